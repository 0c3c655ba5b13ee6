package session

// Link 是状态机对传输层的全部要求。
// 具体实现在 internal/api/ws；测试里用内存假链路替换。
type Link interface {
	SendJSON(v any) error
	SendBinary(data []byte) error
	Close()
}

// LinkEvents 是传输层向上投递的三类事件。
// OnOpen 在连接建立后同步触发一次；
// 传输错误和对端关闭统一走 OnLost，不做区分。
type LinkEvents struct {
	OnOpen    func(l Link)
	OnMessage func(data []byte)
	OnLost    func(err error)
}

// DialFunc 建立一条新链路。每次重连都会调用它拿到全新的链路，
// 旧链路整个丢弃，绝不复用半途状态。
type DialFunc func(ev LinkEvents) (Link, error)
