package session

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"tdt-client/internal/identity"
	"tdt-client/internal/service/dto"
)

// fakeLink 记录发出的所有帧，供断言
type fakeLink struct {
	mu     sync.Mutex
	sent   []any
	binary [][]byte
	closed bool
}

func (f *fakeLink) SendJSON(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, v)

	return nil
}

func (f *fakeLink) SendBinary(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.binary = append(f.binary, data)

	return nil
}

func (f *fakeLink) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
}

func (f *fakeLink) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closed
}

func (f *fakeLink) sentActions(t *testing.T) []dto.Action {
	f.mu.Lock()
	defer f.mu.Unlock()

	actions := make([]dto.Action, 0, len(f.sent))

	for _, v := range f.sent {
		action, ok := v.(dto.Action)
		if !ok {
			t.Fatalf("non-action frame sent: %T", v)
		}

		actions = append(actions, action)
	}

	return actions
}

// fakeDialer 每次拨号交出一条新的 fakeLink，并保留事件回调用于注入消息
type fakeDialer struct {
	mu    sync.Mutex
	links []*fakeLink
	evs   []LinkEvents
	fail  bool
}

func (fd *fakeDialer) dial(ev LinkEvents) (Link, error) {
	fd.mu.Lock()

	if fd.fail {
		fd.mu.Unlock()
		return nil, errors.New("dial refused")
	}

	l := &fakeLink{}
	fd.links = append(fd.links, l)
	fd.evs = append(fd.evs, ev)

	fd.mu.Unlock()

	ev.OnOpen(l)

	return l, nil
}

func (fd *fakeDialer) link(i int) *fakeLink {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	return fd.links[i]
}

func (fd *fakeDialer) events(i int) LinkEvents {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	return fd.evs[i]
}

func newTestMachine(fd *fakeDialer) *Machine {
	ident := identity.Identity{PlayerID: "player-1", Name: "Alice", Face: "A"}

	return NewMachine("abcde", ident, fd.dial, nil)
}

func push(t *testing.T, fd *fakeDialer, i int, payload string) {
	t.Helper()

	fd.events(i).OnMessage([]byte(payload))
}

func TestMachine_SendsAccessOnOpen(t *testing.T) {
	fd := &fakeDialer{}
	m := newTestMachine(fd)

	if err := m.Connect(); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	actions := fd.link(0).sentActions(t)

	if len(actions) != 1 || actions[0].Action != dto.ACTION_ACCESS {
		t.Fatalf("want exactly one access action on open, got %+v", actions)
	}

	content := actions[0].Content.(dto.AccessContent)

	if content.GameID != "abcde" || content.PlayerID != "player-1" {
		t.Fatalf("access content wrong: %+v", content)
	}
}

func TestMachine_StartsInLoading(t *testing.T) {
	m := newTestMachine(&fakeDialer{})

	if m.Phase().State() != dto.STATE_LOADING {
		t.Fatalf("want loading before any message, got %q", m.Phase().State())
	}
}

func TestMachine_ReplacesPhaseWholesale(t *testing.T) {
	fd := &fakeDialer{}
	m := newTestMachine(fd)
	_ = m.Connect()

	push(t, fd, 0, `{"state":"type","round":1,"rounds":4,"drawingSrc":null,"artist":null}`)

	if m.Phase().State() != dto.STATE_TYPE {
		t.Fatalf("want type, got %q", m.Phase().State())
	}

	push(t, fd, 0, `{"state":"draw","round":2,"rounds":4,"text":"a dog","textWriter":{"name":"Bob","face":"B","isCreator":false}}`)

	draw, ok := m.Phase().(dto.DrawPhase)
	if !ok {
		t.Fatalf("want DrawPhase, got %T", m.Phase())
	}

	if draw.Text != "a dog" {
		t.Fatalf("draw phase content wrong: %+v", draw)
	}

	// 回到 type：不能残留上一个 type 阶段的任何字段
	push(t, fd, 0, `{"state":"type","round":3,"rounds":4,"drawingSrc":"/api/image/abcde/x.png","artist":{"name":"Bob","face":"B","isCreator":false}}`)

	typ := m.Phase().(dto.TypePhase)

	if typ.Round != 3 || typ.DrawingSrc != "/api/image/abcde/x.png" {
		t.Fatalf("later type phase carries stale data: %+v", typ)
	}
}

func TestMachine_MalformedPayloadKeepsPhaseAndFlagsError(t *testing.T) {
	fd := &fakeDialer{}
	m := newTestMachine(fd)
	_ = m.Connect()

	push(t, fd, 0, `{"state":"join"}`)
	push(t, fd, 0, `{"state":"whatever"}`)

	if m.Phase().State() != dto.STATE_JOIN {
		t.Fatalf("phase must survive a malformed payload, got %q", m.Phase().State())
	}

	if !m.ConnectionLost() {
		t.Fatalf("malformed payload must raise the connection error flag")
	}
}

func TestMachine_TerminalPhaseClosesLinkButKeepsPhase(t *testing.T) {
	fd := &fakeDialer{}
	m := newTestMachine(fd)
	_ = m.Connect()

	push(t, fd, 0, `{"state":"stories","stories":[]}`)

	if !fd.link(0).isClosed() {
		t.Fatalf("link must be closed after a terminal phase")
	}

	if m.Phase().State() != dto.STATE_STORIES {
		t.Fatalf("terminal phase must stay readable, got %q", m.Phase().State())
	}

	// 关闭链路后到达的迟到事件不再改变状态
	fd.events(0).OnLost(errors.New("read after close"))

	if m.ConnectionLost() {
		t.Fatalf("close after terminal phase is expected, not a connection loss")
	}
}

func TestMachine_LostConnectionRaisesFlagOnly(t *testing.T) {
	fd := &fakeDialer{}
	m := newTestMachine(fd)
	_ = m.Connect()

	push(t, fd, 0, `{"state":"join"}`)

	fd.events(0).OnLost(errors.New("connection reset"))

	if !m.ConnectionLost() {
		t.Fatalf("lost connection must raise the flag")
	}

	if m.Phase().State() != dto.STATE_JOIN {
		t.Fatalf("lost connection must not reset the phase, got %q", m.Phase().State())
	}
}

func TestMachine_ReconnectDiscardsStaleLinkEvents(t *testing.T) {
	fd := &fakeDialer{}
	m := newTestMachine(fd)
	_ = m.Connect()

	push(t, fd, 0, `{"state":"join"}`)

	m.Reconnect()

	if !fd.link(0).isClosed() {
		t.Fatalf("reconnect must close the old link")
	}

	// 旧链路的迟到消息和迟到断开通知都要被丢弃
	push(t, fd, 0, `{"state":"unknownGame"}`)
	fd.events(0).OnLost(errors.New("stale"))

	if m.Phase().State() != dto.STATE_JOIN {
		t.Fatalf("stale message leaked into the machine: %q", m.Phase().State())
	}

	if m.ConnectionLost() {
		t.Fatalf("stale loss notification leaked into the machine")
	}

	// 新链路照常工作：恰好一次新的 access 握手
	actions := fd.link(1).sentActions(t)

	if len(actions) != 1 || actions[0].Action != dto.ACTION_ACCESS {
		t.Fatalf("new link should carry exactly one access action, got %+v", actions)
	}

	push(t, fd, 1, `{"state":"waitForGameStart","players":[]}`)

	if m.Phase().State() != dto.STATE_WAIT_FOR_GAME_START {
		t.Fatalf("new link messages must apply, got %q", m.Phase().State())
	}
}

func TestMachine_DialFailureFlagsError(t *testing.T) {
	fd := &fakeDialer{fail: true}
	m := newTestMachine(fd)

	if err := m.Connect(); err == nil {
		t.Fatalf("connect should report the dial error")
	}

	if !m.ConnectionLost() {
		t.Fatalf("dial failure must raise the connection error flag")
	}
}

func TestMachine_IntentsRequireMatchingPhase(t *testing.T) {
	fd := &fakeDialer{}
	m := newTestMachine(fd)
	_ = m.Connect()

	push(t, fd, 0, `{"state":"join"}`)

	if err := m.Start(); err == nil {
		t.Fatalf("start must be rejected outside waitForPlayers")
	}

	if err := m.Type("a cat"); err == nil {
		t.Fatalf("type must be rejected outside the type phase")
	}

	if err := m.SubmitDrawing([]byte{1, 2, 3}); err == nil {
		t.Fatalf("drawing must be rejected outside the draw phase")
	}

	if err := m.Join("Alice", "A"); err != nil {
		t.Fatalf("join must be allowed in the join phase: %v", err)
	}
}

func TestMachine_JoinRejectsBlankName(t *testing.T) {
	fd := &fakeDialer{}
	m := newTestMachine(fd)
	_ = m.Connect()

	push(t, fd, 0, `{"state":"join"}`)

	if err := m.Join("   ", "A"); err == nil {
		t.Fatalf("blank name must be rejected")
	}
}

func TestMachine_SubmitDrawingSendsBinaryFrame(t *testing.T) {
	fd := &fakeDialer{}
	m := newTestMachine(fd)
	_ = m.Connect()

	push(t, fd, 0, `{"state":"draw","round":2,"rounds":4,"text":"a dog","textWriter":{"name":"Bob","face":"B","isCreator":false}}`)

	png := []byte{0x89, 'P', 'N', 'G'}

	if err := m.SubmitDrawing(png); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	l := fd.link(0)

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.binary) != 1 || string(l.binary[0]) != string(png) {
		t.Fatalf("drawing must go out as one raw binary frame, got %v", l.binary)
	}
}

func TestMachine_TypeActionIsWellFormed(t *testing.T) {
	fd := &fakeDialer{}
	m := newTestMachine(fd)
	_ = m.Connect()

	push(t, fd, 0, `{"state":"type","round":1,"rounds":4,"drawingSrc":null,"artist":null}`)

	if err := m.Type("a cat on a mat"); err != nil {
		t.Fatalf("type failed: %v", err)
	}

	actions := fd.link(0).sentActions(t)

	last := actions[len(actions)-1]

	data, err := json.Marshal(last)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if string(data) != `{"action":"type","content":{"text":"a cat on a mat"}}` {
		t.Fatalf("type action wire format wrong: %s", data)
	}
}
