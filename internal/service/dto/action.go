package dto

import "strings"

// 客户端动作类型
const (
	ACTION_ACCESS = "access"
	ACTION_JOIN   = "join"
	ACTION_START  = "start"
	ACTION_TYPE   = "type"
)

// 文字长度上限，与服务器一致（超出部分服务器会截断）
const MAX_TEXT_LENGTH = 2000

// Action 是发往服务器的 JSON 文本帧。
// 图片提交不走这个信封，而是直接发送一个二进制帧（PNG 字节）。
type Action struct {
	Action  string `json:"action"`
	Content any    `json:"content,omitempty"`
}

type AccessContent struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type JoinContent struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Face     string `json:"face"`
}

type TypeContent struct {
	Text string `json:"text"`
}

func NewAccessAction(gameID, playerID string) Action {
	return Action{
		Action: ACTION_ACCESS,
		Content: AccessContent{
			GameID:   gameID,
			PlayerID: playerID,
		},
	}
}

func NewJoinAction(gameID, playerID, name, face string) Action {
	return Action{
		Action: ACTION_JOIN,
		Content: JoinContent{
			GameID:   gameID,
			PlayerID: playerID,
			Name:     name,
			Face:     face,
		},
	}
}

func NewStartAction() Action {
	return Action{Action: ACTION_START}
}

func NewTypeAction(text string) Action {
	// 上限按字符数计，不能按字节截断（多字节字符会被切坏）
	if r := []rune(text); len(r) > MAX_TEXT_LENGTH {
		text = string(r[:MAX_TEXT_LENGTH])
	}

	return Action{
		Action:  ACTION_TYPE,
		Content: TypeContent{Text: text},
	}
}

// 游戏口令：5 位，字母表去掉了易混淆的字符（与服务器生成规则一致）
const (
	GAME_ID_LENGTH   = 5
	GAME_ID_ALPHABET = "23456789abcdefghijkmnpqrstuvwxyz"
)

// IsValidGameID 在边界上校验口令，不合法的输入根本不会发往服务器
func IsValidGameID(gameID string) bool {
	if len(gameID) != GAME_ID_LENGTH {
		return false
	}

	for _, c := range gameID {
		if !strings.ContainsRune(GAME_ID_ALPHABET, c) {
			return false
		}
	}

	return true
}

func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
