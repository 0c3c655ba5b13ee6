package session

import (
	"errors"
	"sync"

	"tdt-client/internal/identity"
	"tdt-client/internal/service/dto"

	"go.uber.org/zap"
)

// Machine 是会话状态机：把一条链路上陆续到达的服务器消息
// 解释成互斥的游戏阶段，并把用户意图翻译成出站协议消息。
//
// 阶段完全由服务器驱动：每条入站消息是一个完整快照，整体替换当前阶段。
// 连接丢失不会重置阶段（界面继续显示最后已知的阶段），
// 只是额外竖起 connLost 标志，由用户显式触发重连。
type Machine struct {
	mu sync.Mutex

	gameID string
	ident  identity.Identity
	dial   DialFunc

	phase    dto.Phase
	connLost bool

	// 世代计数器：每次（重）连接递增。
	// 旧链路的回调带着旧世代号，到达时直接丢弃，
	// 这样不需要真正的取消机制也能挡住迟到的事件。
	gen  int
	link Link

	// 阶段或连接状态变化时通知视图层（可为 nil）
	onUpdate func()
}

func NewMachine(gameID string, ident identity.Identity, dial DialFunc, onUpdate func()) *Machine {
	return &Machine{
		gameID:   gameID,
		ident:    ident,
		dial:     dial,
		phase:    dto.LoadingPhase{},
		onUpdate: onUpdate,
	}
}

// Connect 建立（或重建）链路。旧链路被关闭并丢弃，
// 新链路打开后立刻发送 access 握手，触发服务器推送第一个阶段。
func (m *Machine) Connect() error {
	m.mu.Lock()

	m.gen++
	gen := m.gen
	m.connLost = false

	old := m.link
	m.link = nil

	m.mu.Unlock()

	if old != nil {
		old.Close()
	}

	zap.L().Info(
		"开始连接游戏",
		zap.String("game_id", m.gameID),
		zap.Int("generation", gen),
	)

	ev := LinkEvents{
		OnOpen: func(l Link) {
			m.handleOpen(gen, l)
		},
		OnMessage: func(data []byte) {
			m.handleMessage(gen, data)
		},
		OnLost: func(err error) {
			m.handleLost(gen, err)
		},
	}

	if _, err := m.dial(ev); err != nil {
		m.mu.Lock()
		if m.gen == gen {
			m.connLost = true
		}
		m.mu.Unlock()

		m.notify()

		return err
	}

	return nil
}

// Reconnect 由用户在连接丢失对话框里触发
func (m *Machine) Reconnect() {
	zap.S().Infof("游戏 %s 用户触发重连", m.gameID)

	// 连接失败时 connLost 已经重新置位，界面会再次给出重连入口
	_ = m.Connect()
}

// Close 结束会话：作废所有在途回调并关闭链路。
// 视图卸载时调用，保证迟到的事件不会再改动已经释放的状态。
func (m *Machine) Close() {
	m.mu.Lock()
	m.gen++
	link := m.link
	m.link = nil
	m.mu.Unlock()

	if link != nil {
		link.Close()
	}
}

func (m *Machine) handleOpen(gen int, l Link) {
	m.mu.Lock()

	if gen != m.gen {
		m.mu.Unlock()
		l.Close()
		return
	}

	m.link = l
	m.mu.Unlock()

	// 握手：带上游戏口令和持久化的玩家标识。
	// 服务器据此判断我们是新玩家（join）还是已知玩家（恢复当前阶段）。
	err := l.SendJSON(dto.NewAccessAction(m.gameID, m.ident.PlayerID))
	if err != nil {
		zap.L().Error("发送 access 握手失败", zap.Error(err))
	}
}

func (m *Machine) handleMessage(gen int, data []byte) {
	m.mu.Lock()

	if gen != m.gen {
		m.mu.Unlock()

		zap.L().Debug("丢弃过期链路的消息", zap.Int("generation", gen))

		return
	}

	phase, err := dto.ParsePhase(data)
	if err != nil {
		// 解析失败按"关闭地失败"处理：保留旧阶段，界面提示连接异常
		m.connLost = true
		m.mu.Unlock()

		zap.L().Error(
			"无法解析服务器消息",
			zap.ByteString("payload", data),
			zap.Error(err),
		)

		m.notify()

		return
	}

	m.phase = phase

	var toClose Link

	if dto.IsTerminalPhase(phase) {
		// 终止阶段后服务器不会再推送任何消息，主动断开；
		// 阶段值保留，界面继续可读。
		// 世代号同时作废，关闭引发的迟到事件不会被当成连接丢失
		m.gen++
		toClose = m.link
		m.link = nil
	}

	m.mu.Unlock()

	zap.L().Info(
		"进入新阶段",
		zap.String("game_id", m.gameID),
		zap.String("state", phase.State()),
	)

	if toClose != nil {
		toClose.Close()
	}

	m.notify()
}

func (m *Machine) handleLost(gen int, err error) {
	m.mu.Lock()

	if gen != m.gen {
		m.mu.Unlock()
		return
	}

	m.connLost = true
	m.mu.Unlock()

	zap.L().Warn(
		"游戏连接丢失",
		zap.String("game_id", m.gameID),
		zap.Error(err),
	)

	m.notify()
}

// Phase 返回当前阶段快照
func (m *Machine) Phase() dto.Phase {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.phase
}

// ConnectionLost 报告是否处于"连接丢失待重连"状态
func (m *Machine) ConnectionLost() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.connLost
}

func (m *Machine) GameID() string {
	return m.gameID
}

// Join 提交名字和头像加入游戏。只在 join 阶段合法；
// 空白名字在边界上已被界面挡住，这里再兜一道底。
func (m *Machine) Join(name, face string) error {
	if dto.IsBlank(name) {
		return errors.New("名字不能为空")
	}

	link, err := m.requireState(dto.STATE_JOIN)
	if err != nil {
		return err
	}

	return link.SendJSON(dto.NewJoinAction(m.gameID, m.ident.PlayerID, name, face))
}

// Start 由创建者在人数足够时触发开始
func (m *Machine) Start() error {
	link, err := m.requireState(dto.STATE_WAIT_FOR_PLAYERS)
	if err != nil {
		return err
	}

	return link.SendJSON(dto.NewStartAction())
}

// Type 提交本轮的文字
func (m *Machine) Type(text string) error {
	if dto.IsBlank(text) {
		return errors.New("文字不能为空")
	}

	link, err := m.requireState(dto.STATE_TYPE)
	if err != nil {
		return err
	}

	return link.SendJSON(dto.NewTypeAction(text))
}

// SubmitDrawing 提交完成的画作。
// 图片不走 JSON 信封，直接作为一帧二进制数据发送。
func (m *Machine) SubmitDrawing(png []byte) error {
	link, err := m.requireState(dto.STATE_DRAW)
	if err != nil {
		return err
	}

	zap.S().Infof("提交画作（%dKB）", len(png)/1000)

	return link.SendBinary(png)
}

// requireState 校验当前阶段并返回链路。
// 发送是"发了就不管"：状态机从不阻塞等待回应，只响应下一条入站消息。
func (m *Machine) requireState(state string) (Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase.State() != state {
		zap.L().Warn(
			"当前阶段不允许该操作",
			zap.String("want", state),
			zap.String("got", m.phase.State()),
		)

		return nil, errors.New("当前阶段不允许该操作")
	}

	if m.link == nil {
		return nil, errors.New("连接不可用")
	}

	return m.link, nil
}

func (m *Machine) notify() {
	if m.onUpdate != nil {
		m.onUpdate()
	}
}
