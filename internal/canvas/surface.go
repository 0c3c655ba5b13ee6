package canvas

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// 位图的逻辑尺寸固定不变，显示尺寸变化只影响换算，不影响内容
const (
	BITMAP_WIDTH  = 1440
	BITMAP_HEIGHT = 1080
)

type TouchPoint struct {
	X float64
	Y float64
}

// Surface 是画布控制器：持有唯一的栅格位图，
// 把指针和触摸事件换算成位图坐标后交给笔划绘制器，
// 并在视口变化时重算内容缩放、重新生成画笔目录。
// 所有副作用都落在自己的位图上，没有全局状态。
type Surface struct {
	dc      *gg.Context
	painter StrokePainter

	// 当前视口（画布在屏幕上的外接框），每次尺寸变化时更新
	boxLeft float64
	boxTop  float64
	boxW    float64
	boxH    float64

	scale      float64
	brushes    []Brush
	brushIndex int
	colorHex   string
	col        color.Color

	// 每次位图内容变化递增，供视图层判断是否需要重新上传纹理
	version uint64
}

func NewSurface() *Surface {
	s := &Surface{
		dc:         gg.NewContext(BITMAP_WIDTH, BITMAP_HEIGHT),
		scale:      1,
		brushes:    MakeBrushes(1),
		brushIndex: DEFAULT_BRUSH_INDEX,
	}

	s.SetColorHex(DefaultColor)
	s.Clear()

	return s
}

// Clear 把整张位图刷成白色背景
func (s *Surface) Clear() {
	s.dc.SetColor(color.White)
	s.dc.Clear()
	s.version++
}

// SetViewport 更新画布的屏幕外接框。
// 内容缩放随之重算；画笔目录整体重新生成，但选中下标保持不变。
func (s *Surface) SetViewport(left, top, w, h float64) {
	s.boxLeft, s.boxTop, s.boxW, s.boxH = left, top, w, h

	fit := ContainFit(w, h, BITMAP_WIDTH, BITMAP_HEIGHT)

	newScale := 1.0
	if fit.W > 0 {
		newScale = fit.W / BITMAP_WIDTH
	}

	if newScale != s.scale {
		s.scale = newScale
		s.brushes = MakeBrushes(newScale)
	}
}

// Scale 返回当前内容缩放（显示尺寸 / 位图尺寸）
func (s *Surface) Scale() float64 {
	return s.scale
}

// FittedRect 返回位图在当前视口内的适配矩形（视口内坐标）
func (s *Surface) FittedRect() FitRect {
	return ContainFit(s.boxW, s.boxH, BITMAP_WIDTH, BITMAP_HEIGHT)
}

func (s *Surface) Brushes() []Brush {
	return s.brushes
}

func (s *Surface) BrushIndex() int {
	return s.brushIndex
}

func (s *Surface) SelectedBrush() Brush {
	return s.brushes[s.brushIndex]
}

func (s *Surface) SelectBrush(index int) error {
	if index < 0 || index >= len(s.brushes) {
		return fmt.Errorf("画笔下标越界: %d", index)
	}

	s.brushIndex = index

	return nil
}

func (s *Surface) SetColorHex(hex string) {
	s.colorHex = hex
	s.col = ParseHexColor(hex)
}

func (s *Surface) ColorHex() string {
	return s.colorHex
}

func (s *Surface) pixelSize() float64 {
	return float64(s.SelectedBrush().PixelSize)
}

func (s *Surface) normalize(clientX, clientY float64) (float64, float64) {
	return NormalizePoint(
		s.boxLeft, s.boxTop, s.boxW, s.boxH,
		BITMAP_WIDTH, BITMAP_HEIGHT,
		clientX, clientY,
	)
}

// MouseDown 只在按下主键时开始笔划（buttons 按位：1 = 主键）
func (s *Surface) MouseDown(clientX, clientY float64, buttons int) {
	if buttons != 1 {
		return
	}

	x, y := s.normalize(clientX, clientY)
	s.painter.Start(x, y)
}

// MouseMove 在主键未按下时视为笔划结束（比如在画布外松开了鼠标）
func (s *Surface) MouseMove(clientX, clientY float64, buttons int) {
	x, y := s.normalize(clientX, clientY)

	if buttons&1 == 0 {
		s.endStroke()
		return
	}

	s.painter.Move(s.dc, x, y, s.pixelSize(), s.col)
	s.version++
}

func (s *Surface) MouseUp(clientX, clientY float64) {
	s.endStroke()
}

// MouseOut 以离开点收尾，笔划不会在边缘突然断掉
func (s *Surface) MouseOut(clientX, clientY float64) {
	if !s.painter.Active() {
		return
	}

	x, y := s.normalize(clientX, clientY)
	s.painter.EndAt(s.dc, x, y, s.pixelSize(), s.col)
	s.version++
}

// TouchStart 只接受单指：多指是缩放等手势，不能当作画画
func (s *Surface) TouchStart(touches []TouchPoint) {
	if len(touches) != 1 {
		s.endStroke()
		return
	}

	x, y := s.normalize(touches[0].X, touches[0].Y)
	s.painter.Start(x, y)
}

func (s *Surface) TouchMove(touches []TouchPoint) {
	if len(touches) != 1 {
		s.endStroke()
		return
	}

	x, y := s.normalize(touches[0].X, touches[0].Y)
	s.painter.Move(s.dc, x, y, s.pixelSize(), s.col)
	s.version++
}

func (s *Surface) TouchEnd() {
	s.endStroke()
}

func (s *Surface) endStroke() {
	if !s.painter.Active() {
		return
	}

	s.painter.End(s.dc, s.pixelSize(), s.col)
	s.version++
}

// StrokeActive 报告是否正处于一次未收尾的笔划中
func (s *Surface) StrokeActive() bool {
	return s.painter.Active()
}

// Image 返回底层位图（只读使用，调用方不应修改像素）
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

func (s *Surface) Version() uint64 {
	return s.version
}

// ExportPNG 把当前位图内容编码成 PNG 字节，用于作为二进制帧提交
func (s *Surface) ExportPNG() ([]byte, error) {
	var buf bytes.Buffer

	if err := s.dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("导出 PNG 失败: %w", err)
	}

	return buf.Bytes(), nil
}

// ParseHexColor 解析 #RGB / #RRGGBB 两种写法，解析失败返回黑色
func ParseHexColor(hex string) color.Color {
	if len(hex) == 0 || hex[0] != '#' {
		return color.Black
	}

	digits := hex[1:]

	hexVal := func(c byte) (uint8, bool) {
		switch {
		case c >= '0' && c <= '9':
			return c - '0', true
		case c >= 'a' && c <= 'f':
			return c - 'a' + 10, true
		case c >= 'A' && c <= 'F':
			return c - 'A' + 10, true
		default:
			return 0, false
		}
	}

	switch len(digits) {
	case 3:
		r, ok1 := hexVal(digits[0])
		g, ok2 := hexVal(digits[1])
		b, ok3 := hexVal(digits[2])
		if !ok1 || !ok2 || !ok3 {
			return color.Black
		}
		return color.RGBA{R: r * 17, G: g * 17, B: b * 17, A: 255}
	case 6:
		var rgb [3]uint8
		for i := 0; i < 3; i++ {
			hi, ok1 := hexVal(digits[i*2])
			lo, ok2 := hexVal(digits[i*2+1])
			if !ok1 || !ok2 {
				return color.Black
			}
			rgb[i] = hi<<4 | lo
		}
		return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
	default:
		return color.Black
	}
}
