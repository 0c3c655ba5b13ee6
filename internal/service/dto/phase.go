package dto

import (
	"encoding/json"
	"fmt"
)

// 服务器下发的阶段标签。每条消息是一个完整的阶段快照，
// 客户端收到后整体替换当前阶段，绝不做增量合并。
const (
	// loading 只存在于客户端（收到第一条消息之前），服务器不会下发
	STATE_LOADING               = "loading"
	STATE_JOIN                  = "join"
	STATE_WAIT_FOR_PLAYERS      = "waitForPlayers"
	STATE_WAIT_FOR_GAME_START   = "waitForGameStart"
	STATE_TYPE                  = "type"
	STATE_DRAW                  = "draw"
	STATE_WAIT_FOR_ROUND_FINISH = "waitForRoundFinish"
	STATE_STORIES               = "stories"
	STATE_UNKNOWN_GAME          = "unknownGame"
	STATE_ALREADY_STARTED       = "alreadyStartedGame"
)

// Phase 是阶段的带标签联合，任一时刻恰好一个变体生效
type Phase interface {
	State() string
}

type LoadingPhase struct{}

func (LoadingPhase) State() string { return STATE_LOADING }

// JoinPhase 表示本玩家还未加入，需要提交名字和头像
type JoinPhase struct{}

func (JoinPhase) State() string { return STATE_JOIN }

// WaitForPlayersPhase 是创建者视角的等待界面，可以在人数足够时开始游戏
type WaitForPlayersPhase struct {
	Players []PlayerInfo `json:"players"`
}

func (WaitForPlayersPhase) State() string { return STATE_WAIT_FOR_PLAYERS }

// WaitForGameStartPhase 是非创建者视角的等待界面
type WaitForGameStartPhase struct {
	Players []PlayerInfo `json:"players"`
}

func (WaitForGameStartPhase) State() string { return STATE_WAIT_FOR_GAME_START }

// TypePhase 的 DrawingSrc 与 Artist 在第一轮为空：第一轮没有可参考的画
type TypePhase struct {
	Round      int         `json:"round"`
	Rounds     int         `json:"rounds"`
	DrawingSrc string      `json:"drawingSrc"`
	Artist     *PlayerInfo `json:"artist"`
}

func (TypePhase) State() string { return STATE_TYPE }

type DrawPhase struct {
	Round      int        `json:"round"`
	Rounds     int        `json:"rounds"`
	Text       string     `json:"text"`
	TextWriter PlayerInfo `json:"textWriter"`
}

func (DrawPhase) State() string { return STATE_DRAW }

type WaitForRoundFinishPhase struct {
	WaitingForPlayers []PlayerInfo `json:"waitingForPlayers"`
	IsTypeRound       bool         `json:"isTypeRound"`
}

func (WaitForRoundFinishPhase) State() string { return STATE_WAIT_FOR_ROUND_FINISH }

type StoriesPhase struct {
	Stories []Story `json:"stories"`
}

func (StoriesPhase) State() string { return STATE_STORIES }

type UnknownGamePhase struct{}

func (UnknownGamePhase) State() string { return STATE_UNKNOWN_GAME }

type AlreadyStartedPhase struct{}

func (AlreadyStartedPhase) State() string { return STATE_ALREADY_STARTED }

// ParsePhase 把一条服务器消息解析为 Phase。
// 未知标签或非法 JSON 返回错误，由调用方决定如何兜底（保持旧阶段）。
func ParsePhase(data []byte) (Phase, error) {
	var tag struct {
		State string `json:"state"`
	}

	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("解析阶段标签失败: %w", err)
	}

	switch tag.State {
	case STATE_JOIN:
		return JoinPhase{}, nil

	case STATE_WAIT_FOR_PLAYERS:
		var p WaitForPlayersPhase
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("解析 %s 阶段失败: %w", tag.State, err)
		}
		return p, nil

	case STATE_WAIT_FOR_GAME_START:
		var p WaitForGameStartPhase
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("解析 %s 阶段失败: %w", tag.State, err)
		}
		return p, nil

	case STATE_TYPE:
		var p TypePhase
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("解析 %s 阶段失败: %w", tag.State, err)
		}
		return p, nil

	case STATE_DRAW:
		var p DrawPhase
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("解析 %s 阶段失败: %w", tag.State, err)
		}
		return p, nil

	case STATE_WAIT_FOR_ROUND_FINISH:
		var p WaitForRoundFinishPhase
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("解析 %s 阶段失败: %w", tag.State, err)
		}
		return p, nil

	case STATE_STORIES:
		var p StoriesPhase
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("解析 %s 阶段失败: %w", tag.State, err)
		}
		return p, nil

	case STATE_UNKNOWN_GAME:
		return UnknownGamePhase{}, nil

	case STATE_ALREADY_STARTED:
		return AlreadyStartedPhase{}, nil

	default:
		return nil, fmt.Errorf("未知的游戏阶段: %q", tag.State)
	}
}

// IsTerminalPhase 判断是否为终止阶段。
// 终止阶段之后服务器不会再推送消息，客户端应当主动关闭连接。
func IsTerminalPhase(p Phase) bool {
	switch p.(type) {
	case StoriesPhase, UnknownGamePhase, AlreadyStartedPhase:
		return true
	default:
		return false
	}
}
