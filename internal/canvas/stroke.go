package canvas

import (
	"image/color"

	"github.com/fogleman/gg"
)

type Point struct {
	X float64
	Y float64
}

// StrokePainter 负责把连续的笔划点增量画到栅格上。
// 唯一的可变状态是"上一个画过的点"，显式放在字段里而不是闭包里，
// 这样多个画布实例可以各自独立存在。
// 线宽和颜色在每次调用时读取，笔划中途换笔会从下一段开始生效。
type StrokePainter struct {
	last *Point
}

// Start 只记录锚点，不画任何东西
func (sp *StrokePainter) Start(x, y float64) {
	sp.last = &Point{X: x, Y: y}
}

// Move 从锚点到 (x, y) 画一段圆头线段，然后把锚点挪到 (x, y)。
// 圆头圆角保证触摸这种低采样率的输入看起来仍然是连续的笔划。
// 没有锚点时把当前点当作锚点（防御性的点画）。
func (sp *StrokePainter) Move(dc *gg.Context, x, y float64, pixelSize float64, col color.Color) {
	if sp.last == nil {
		sp.Start(x, y)
	}

	dc.SetColor(col)

	if sp.last.X == x && sp.last.Y == y {
		// 零长度线段：直接画一个圆点，保证单击也能留下痕迹
		dc.DrawCircle(x, y, pixelSize/2)
		dc.Fill()
	} else {
		dc.SetLineWidth(pixelSize)
		dc.SetLineCap(gg.LineCapRound)
		dc.SetLineJoin(gg.LineJoinRound)
		dc.DrawLine(sp.last.X, sp.last.Y, x, y)
		dc.Stroke()
	}

	sp.last = &Point{X: x, Y: y}
}

// End 结束笔划：补画最后一段到锚点自身（零长度，即一个圆点），
// 然后清除锚点。没有锚点时是无操作，重复调用是安全的。
func (sp *StrokePainter) End(dc *gg.Context, pixelSize float64, col color.Color) {
	if sp.last == nil {
		return
	}

	sp.Move(dc, sp.last.X, sp.last.Y, pixelSize, col)
	sp.last = nil
}

// EndAt 在指定点结束笔划（比如指针移出画布时，以离开点收尾）
func (sp *StrokePainter) EndAt(dc *gg.Context, x, y float64, pixelSize float64, col color.Color) {
	if sp.last == nil {
		return
	}

	sp.Move(dc, x, y, pixelSize, col)
	sp.last = nil
}

// Active 报告当前是否有未结束的笔划
func (sp *StrokePainter) Active() bool {
	return sp.last != nil
}
