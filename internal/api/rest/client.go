package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const REQUEST_TIMEOUT = 15 * time.Second

// Client 封装对游戏服务器 HTTP 接口的调用：
// 建一局新游戏，以及按 drawingSrc 拉取别人画好的图。
type Client struct {
	serverURL string
	hc        *http.Client
}

func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimSuffix(serverURL, "/"),
		hc: &http.Client{
			Timeout: REQUEST_TIMEOUT,
		},
	}
}

type createGameRequest struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	PlayerFace string `json:"playerFace"`
}

type createGameResponse struct {
	GameID string `json:"gameId"`
}

// CreateGame 请求服务器开一局新游戏，返回可分享的游戏口令。
// 创建者随之成为这局游戏的第一个玩家。
func (c *Client) CreateGame(playerID, playerName, playerFace string) (string, error) {
	body, err := json.Marshal(createGameRequest{
		PlayerID:   playerID,
		PlayerName: playerName,
		PlayerFace: playerFace,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.hc.Post(
		c.serverURL+"/api/create",
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("创建游戏请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("创建游戏失败: 服务器返回 %s", resp.Status)
	}

	var created createGameResponse

	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("解析创建响应失败: %w", err)
	}

	zap.L().Info("已创建游戏", zap.String("game_id", created.GameID))

	return created.GameID, nil
}

// FetchImageBytes 按服务器给的图片路径（如 /api/image/xxx/yyy.png）拉取原始字节。
// 路径对客户端是不透明的，原样拼在服务器地址后面。
func (c *Client) FetchImageBytes(src string) ([]byte, error) {
	resp, err := c.hc.Get(c.serverURL + src)
	if err != nil {
		return nil, fmt.Errorf("拉取图片失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("拉取图片失败: 服务器返回 %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// FetchImage 拉取并解码成可绘制的图像
func (c *Client) FetchImage(src string) (image.Image, error) {
	data, err := c.FetchImageBytes(src)
	if err != nil {
		return nil, err
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片失败: %w", err)
	}

	return img, nil
}

// JoinURL 返回可以分享给其他玩家的加入链接
func (c *Client) JoinURL(gameID string) string {
	return c.serverURL + "/g/" + gameID
}
