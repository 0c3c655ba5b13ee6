package dto

// PlayerInfo 是服务器下发的玩家公开信息（不含 playerId，避免泄露身份凭据）
type PlayerInfo struct {
	Name      string `json:"name"`
	Face      string `json:"face"`
	IsCreator bool   `json:"isCreator"`
}

// 故事元素类型：文字与图片交替
const (
	ELEMENT_TEXT  = "text"
	ELEMENT_IMAGE = "image"
)

// StoryElement 的 Content 对文字元素是内容本身，
// 对图片元素是服务器上的图片路径（客户端直接按 URL 拉取，不做解析）
type StoryElement struct {
	Type    string     `json:"type"`
	Content string     `json:"content"`
	Player  PlayerInfo `json:"player"`
}

type Story struct {
	Elements []StoryElement `json:"elements"`
}
