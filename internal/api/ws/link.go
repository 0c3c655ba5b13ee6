package ws

import (
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"tdt-client/internal/service/session"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const HANDSHAKE_TIMEOUT = 10 * time.Second

// Link 是到游戏服务器的一条 WebSocket 连接（客户端侧）。
// 它只负责传输：连接、收发、感知断开；不包含任何游戏语义。
// 重连不复用旧连接，而是整个丢弃后重新 Dial 一条。
type Link struct {
	conn *websocket.Conn

	// gorilla 的写不允许并发，JSON 帧和图片二进制帧共用一把写锁
	writeMu sync.Mutex

	// 本地主动关闭后置位，此后读协程的报错不再往上抛
	closed atomic.Bool
}

// Dial 建立连接并启动读协程。
// 成功后会先同步回调 OnOpen（调用方在这里发送 access 握手），
// 之后所有入站消息经 OnMessage 上报，断开经 OnLost 上报。
func Dial(wsURL string, ev session.LinkEvents) (session.Link, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: HANDSHAKE_TIMEOUT,
	}

	conn, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		zap.L().Error(
			"连接游戏服务器失败",
			zap.String("url", wsURL),
			zap.Error(err),
		)
		return nil, err
	}

	zap.L().Info(
		"已连接游戏服务器",
		zap.String("url", wsURL),
	)

	l := &Link{conn: conn}

	if ev.OnOpen != nil {
		ev.OnOpen(l)
	}

	go l.readLoop(ev)

	return l, nil
}

func (l *Link) readLoop(ev session.LinkEvents) {
	for {
		_, msg, err := l.conn.ReadMessage()
		if err != nil {
			if l.closed.Load() {
				// 本地主动关闭导致的读失败，属于预期，不上报
				zap.L().Debug("连接已按预期关闭", zap.Error(err))
				return
			}

			// 传输错误和对端异常关闭统一上报为一次"连接丢失"
			zap.L().Warn("连接丢失", zap.Error(err))

			if ev.OnLost != nil {
				ev.OnLost(err)
			}

			return
		}

		if ev.OnMessage != nil {
			ev.OnMessage(msg)
		}
	}
}

// SendJSON 发送一条 JSON 文本帧
func (l *Link) SendJSON(v any) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	return l.conn.WriteJSON(v)
}

// SendBinary 发送一帧原始二进制数据（完成的画作 PNG）
func (l *Link) SendBinary(data []byte) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	return l.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Close 主动关闭连接。幂等：重复调用是无操作。
func (l *Link) Close() {
	if !l.closed.CompareAndSwap(false, true) {
		return
	}

	l.writeMu.Lock()
	_ = l.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	l.writeMu.Unlock()

	_ = l.conn.Close()

	zap.L().Info("已断开与游戏服务器的连接")
}

// URL 把服务器的 HTTP(S) 地址推导成 WebSocket 端点：
// http 升级为 ws，https 升级为 wss，路径固定为 /api/websocket
func URL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	u.Path = "/api/websocket"

	return u.String(), nil
}
