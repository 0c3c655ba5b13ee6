package view

import (
	"fmt"
	"image"
	"sync"

	"tdt-client/internal/api/rest"
	"tdt-client/internal/canvas"
	"tdt-client/internal/service/dto"
	"tdt-client/internal/service/session"
	"tdt-client/internal/state"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"
)

const toolbarH = 64

// App 是视图层：一个 ebiten 游戏循环，按会话状态机的当前阶段
// 渲染互斥的界面，并把输入翻译成状态机的意图调用。
// 视图不直接持有协议知识，所有协议语义都在状态机一侧。
type App struct {
	st      *state.AppState
	machine *session.Machine
	rest    *rest.Client
	surface *canvas.Surface

	winW int
	winH int

	// 阶段切换检测，用于重置各界面的瞬时状态
	lastPhaseKey string

	// join 界面
	nameField *TextField
	face      string

	// type 界面
	textField *TextField
	refMu     sync.Mutex
	refImg    image.Image
	refTex    *ebiten.Image
	refSrc    string

	// draw 界面
	bitmapTex   *ebiten.Image
	texVersion  uint64
	confirming  bool
	submitted   bool
	prevTouches int
	touchIDs    []ebiten.TouchID

	// waitForPlayers 界面
	qrTex *ebiten.Image

	// stories 界面
	storiesMu      sync.Mutex
	storiesSaving  bool
	storiesSaved   bool
	storiesSaveErr error
	saveStories    func(gameID string, stories []dto.Story) error
}

// NewApp 组装视图。saveStories 注入故事落盘逻辑，避免视图直接依赖画廊包。
func NewApp(
	appState *state.AppState,
	machine *session.Machine,
	restClient *rest.Client,
	saveStories func(gameID string, stories []dto.Story) error,
) *App {
	a := &App{
		st:          appState,
		machine:     machine,
		rest:        restClient,
		surface:     canvas.NewSurface(),
		nameField:   NewTextField(30),
		textField:   NewTextField(dto.MAX_TEXT_LENGTH),
		face:        appState.Ident.Face,
		saveStories: saveStories,
	}

	a.nameField.SetText(appState.Ident.Name)

	return a
}

// Run 打开窗口并运行游戏循环，窗口关闭时返回
func Run(app *App) error {
	ebiten.SetWindowSize(1080, 810)
	ebiten.SetWindowTitle("Type Draw Type - " + app.machine.GameID())
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := app.machine.Connect(); err != nil {
		// 连不上也照常进入循环，界面会显示连接丢失并提供重连
		zap.L().Warn("初次连接失败", zap.Error(err))
	}

	defer app.machine.Close()

	return ebiten.RunGame(app)
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.winW, a.winH = outsideWidth, outsideHeight

	return outsideWidth, outsideHeight
}

// phaseKey 标识"界面实例"：同一个标签的连续两轮（type 第 1 轮和第 3 轮）
// 也要当作不同界面，各自从干净的瞬时状态开始。
func phaseKey(p dto.Phase) string {
	switch v := p.(type) {
	case dto.TypePhase:
		return fmt.Sprintf("type/%d", v.Round)
	case dto.DrawPhase:
		return fmt.Sprintf("draw/%d", v.Round)
	default:
		return p.State()
	}
}

func (a *App) onPhaseEnter(p dto.Phase) {
	a.confirming = false
	a.submitted = false
	a.textField.Clear()

	switch v := p.(type) {
	case dto.DrawPhase:
		// 新一轮画画从全白的画布开始
		a.surface.Clear()

	case dto.TypePhase:
		a.refMu.Lock()
		a.refImg = nil
		a.refMu.Unlock()
		a.refTex = nil
		a.refSrc = ""

	case dto.StoriesPhase:
		a.startSavingStories(v.Stories)
	}
}

func (a *App) Update() error {
	phase := a.machine.Phase()

	if key := phaseKey(phase); key != a.lastPhaseKey {
		a.onPhaseEnter(phase)
		a.lastPhaseKey = key
	}

	if a.machine.ConnectionLost() {
		if inpututil.IsKeyJustPressed(ebiten.KeyR) {
			a.machine.Reconnect()
		}

		return nil
	}

	switch p := phase.(type) {
	case dto.JoinPhase:
		a.updateJoin()

	case dto.WaitForPlayersPhase:
		a.updateWaitForPlayers(p)

	case dto.TypePhase:
		a.updateType(p)

	case dto.DrawPhase:
		a.updateDraw()
	}

	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackdrop)

	switch p := a.machine.Phase().(type) {
	case dto.LoadingPhase:
		drawTextCentered(screen, "Loading game...", a.winW/2, a.winH/2, 2)

	case dto.JoinPhase:
		a.drawJoin(screen)

	case dto.WaitForPlayersPhase:
		a.drawWaitForPlayers(screen, p)

	case dto.WaitForGameStartPhase:
		a.drawWaitForGameStart(screen, p)

	case dto.TypePhase:
		a.drawType(screen, p)

	case dto.DrawPhase:
		a.drawDraw(screen, p)

	case dto.WaitForRoundFinishPhase:
		a.drawWaitForRoundFinish(screen, p)

	case dto.StoriesPhase:
		a.drawStories(screen, p)

	case dto.AlreadyStartedPhase:
		drawTextCentered(screen,
			"Sorry, the game has already started.\n\nYou will see the created stories,\nonce that game is finished.",
			a.winW/2, a.winH/2-32, 2)

	case dto.UnknownGamePhase:
		drawTextCentered(screen,
			"Sorry, the game code "+a.machine.GameID()+" was not found.",
			a.winW/2, a.winH/2, 2)
	}

	if a.machine.ConnectionLost() {
		a.drawConnectionLost(screen)
	}
}

func (a *App) drawConnectionLost(screen *ebiten.Image) {
	fillRect(screen, 0, 0, float64(a.winW), float64(a.winH),
		withAlpha(colorBackdrop, 0xc0))

	drawTextCentered(screen, "Connection lost.", a.winW/2, a.winH/2-24, 3)
	drawTextCentered(screen, "Press R to reconnect", a.winW/2, a.winH/2+40, 2)
}

func (a *App) startSavingStories(stories []dto.Story) {
	a.storiesMu.Lock()
	defer a.storiesMu.Unlock()

	if a.storiesSaving || a.storiesSaved || a.saveStories == nil {
		return
	}

	a.storiesSaving = true

	go func() {
		err := a.saveStories(a.machine.GameID(), stories)

		a.storiesMu.Lock()
		a.storiesSaving = false
		a.storiesSaved = err == nil
		a.storiesSaveErr = err
		a.storiesMu.Unlock()

		if err != nil {
			zap.L().Error("保存故事失败", zap.Error(err))
		}
	}()
}
