package view

import (
	"fmt"
	"image"

	"tdt-client/internal/canvas"
	"tdt-client/internal/service/dto"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"
)

func (a *App) updateDraw() {
	// 画布外接框是工具栏以下的整个窗口区域，每帧跟着窗口尺寸走
	a.surface.SetViewport(0, toolbarH, float64(a.winW), float64(a.winH-toolbarH))

	if a.confirming {
		a.updateConfirmDialog()
		return
	}

	a.handleDrawKeys()
	a.handleMouse()
	a.handleTouches()
}

func (a *App) updateConfirmDialog() {
	if inpututil.IsKeyJustPressed(ebiten.KeyY) && !a.submitted {
		png, err := a.surface.ExportPNG()
		if err != nil {
			zap.L().Error("导出画作失败", zap.Error(err))
			a.confirming = false
			return
		}

		if err := a.machine.SubmitDrawing(png); err != nil {
			zap.L().Error("提交画作失败", zap.Error(err))
			a.confirming = false
			return
		}

		a.submitted = true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) ||
		inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.confirming = false
	}
}

func (a *App) handleDrawKeys() {
	brushKeys := []ebiten.Key{
		ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
		ebiten.KeyDigit4, ebiten.KeyDigit5,
	}

	for i, key := range brushKeys {
		if inpututil.IsKeyJustPressed(key) && i < len(a.surface.Brushes()) {
			_ = a.surface.SelectBrush(i)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		a.surface.SetColorHex(nextPaletteColor(a.surface.ColorHex()))
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyX) {
		a.surface.Clear()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) && !a.submitted {
		a.confirming = true
	}
}

func nextPaletteColor(current string) string {
	for i, c := range canvas.Palette {
		if c == current {
			return canvas.Palette[(i+1)%len(canvas.Palette)]
		}
	}

	return canvas.Palette[0]
}

func (a *App) handleMouse() {
	cx, cy := ebiten.CursorPosition()
	fx, fy := float64(cx), float64(cy)

	buttons := 0
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		buttons |= 1
	}

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		if fy >= toolbarH {
			a.surface.MouseDown(fx, fy, buttons)
		} else {
			a.handleToolbarClick(fx, fy)
		}

	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		a.surface.MouseUp(fx, fy)

	case buttons&1 == 0 || a.surface.StrokeActive():
		// 按住但笔划未开始（比如从工具栏拖进来）不算画画
		a.surface.MouseMove(fx, fy, buttons)
	}
}

func (a *App) handleTouches() {
	a.touchIDs = ebiten.AppendTouchIDs(a.touchIDs[:0])

	points := make([]canvas.TouchPoint, 0, len(a.touchIDs))

	for _, id := range a.touchIDs {
		x, y := ebiten.TouchPosition(id)
		points = append(points, canvas.TouchPoint{X: float64(x), Y: float64(y)})
	}

	switch {
	case len(inpututil.AppendJustPressedTouchIDs(nil)) > 0:
		a.surface.TouchStart(points)

	case len(points) > 0:
		a.surface.TouchMove(points)

	case a.prevTouches > 0:
		a.surface.TouchEnd()
	}

	a.prevTouches = len(points)
}

// 工具栏布局：左侧画笔圆点，中间调色盘色块，均可点选
func (a *App) brushHitRects() []image.Rectangle {
	rects := make([]image.Rectangle, len(a.surface.Brushes()))

	for i := range rects {
		x := 16 + i*52
		rects[i] = image.Rect(x, 8, x+48, toolbarH-8)
	}

	return rects
}

func (a *App) paletteHitRects() []image.Rectangle {
	left := 16 + len(a.surface.Brushes())*52 + 24

	rects := make([]image.Rectangle, len(canvas.Palette))

	for i := range rects {
		x := left + i*28
		rects[i] = image.Rect(x, 18, x+24, 42)
	}

	return rects
}

func (a *App) handleToolbarClick(fx, fy float64) {
	pt := image.Pt(int(fx), int(fy))

	for i, r := range a.brushHitRects() {
		if pt.In(r) {
			_ = a.surface.SelectBrush(i)
			return
		}
	}

	for i, r := range a.paletteHitRects() {
		if pt.In(r) {
			a.surface.SetColorHex(canvas.Palette[i])
			return
		}
	}
}

// canvasTexture 把位图同步到 GPU 纹理，只有内容版本变化时才重传
func (a *App) canvasTexture() *ebiten.Image {
	if a.bitmapTex != nil && a.texVersion == a.surface.Version() {
		return a.bitmapTex
	}

	if rgba, ok := a.surface.Image().(*image.RGBA); ok && a.bitmapTex != nil {
		a.bitmapTex.WritePixels(rgba.Pix)
	} else {
		a.bitmapTex = ebiten.NewImageFromImage(a.surface.Image())
	}

	a.texVersion = a.surface.Version()

	return a.bitmapTex
}

func (a *App) drawDraw(screen *ebiten.Image, p dto.DrawPhase) {
	a.drawCanvas(screen)
	a.drawToolbar(screen, p)

	if a.confirming {
		a.drawConfirmDialog(screen)
	}

	if a.submitted {
		drawTextCentered(screen, "Drawing submitted!", a.winW/2, a.winH/2, 3)
	}
}

func (a *App) drawCanvas(screen *ebiten.Image) {
	fit := a.surface.FittedRect()

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(a.surface.Scale(), a.surface.Scale())
	op.GeoM.Translate(fit.X, toolbarH+fit.Y)
	screen.DrawImage(a.canvasTexture(), op)
}

func (a *App) drawToolbar(screen *ebiten.Image, p dto.DrawPhase) {
	fillRect(screen, 0, 0, float64(a.winW), toolbarH, colorPanel)

	// 画笔档位：圆点大小按显示尺寸，选中的加边框
	for i, r := range a.brushHitRects() {
		brush := a.surface.Brushes()[i]

		cx := float64(r.Min.X+r.Max.X) / 2
		cy := float64(r.Min.Y+r.Max.Y) / 2

		radius := float64(brush.DisplaySize) / 2
		if radius < 2 {
			radius = 2
		}
		if radius > 20 {
			radius = 20
		}

		fillCircle(screen, cx, cy, radius, colorBackdrop)

		if i == a.surface.BrushIndex() {
			strokeRect(screen,
				float64(r.Min.X), float64(r.Min.Y),
				float64(r.Dx()), float64(r.Dy()), 2, colorAccent)
		}
	}

	for i, r := range a.paletteHitRects() {
		fillRect(screen,
			float64(r.Min.X), float64(r.Min.Y),
			float64(r.Dx()), float64(r.Dy()),
			hexToColor(canvas.Palette[i]))

		if canvas.Palette[i] == a.surface.ColorHex() {
			strokeRect(screen,
				float64(r.Min.X)-2, float64(r.Min.Y)-2,
				float64(r.Dx())+4, float64(r.Dy())+4, 2, colorAccent)
		}
	}

	info := fmt.Sprintf("Round %d/%d  Draw: %s", p.Round, p.Rounds,
		clipTail(p.Text, 40))
	drawText(screen, info, 16+len(a.surface.Brushes())*52+24+len(canvas.Palette)*28+24, 8, 1)
	drawText(screen, "X clear   Enter done", a.winW-180, toolbarH-22, 1)
}

func (a *App) drawConfirmDialog(screen *ebiten.Image) {
	fillRect(screen, 0, 0, float64(a.winW), float64(a.winH),
		withAlpha(colorBackdrop, 0xa0))

	cx, cy := a.winW/2, a.winH/2

	fillRect(screen, float64(cx-220), float64(cy-80), 440, 160, colorPanel)
	drawTextCentered(screen, "Send this drawing?", cx, cy-48, 2)
	drawTextCentered(screen, "Y - send it    N - keep drawing", cx, cy+16, 2)
}
