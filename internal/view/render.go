package view

import (
	"image/color"
	"strings"
	"unicode/utf8"

	"tdt-client/internal/canvas"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// 调试字体的字符格子尺寸
const (
	glyphW = 6
	glyphH = 16
)

var (
	colorBackdrop = color.RGBA{R: 0x2b, G: 0x2b, B: 0x33, A: 0xff}
	colorPanel    = color.RGBA{R: 0x3a, G: 0x3a, B: 0x45, A: 0xff}
	colorAccent   = color.RGBA{R: 0x7f, G: 0xc8, B: 0xff, A: 0xff}
)

// drawText 画一行（或多行）文字，scale 为整数倍放大。
// 放大通过先画到临时纹理再缩放实现，够用且不引入字体资源。
func drawText(dst *ebiten.Image, s string, x, y, scale int) {
	if scale <= 1 {
		ebitenutil.DebugPrintAt(dst, s, x, y)
		return
	}

	w, h := textSize(s)
	if w == 0 || h == 0 {
		return
	}

	tmp := ebiten.NewImage(w, h)
	ebitenutil.DebugPrintAt(tmp, s, 0, 0)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	op.GeoM.Translate(float64(x), float64(y))
	dst.DrawImage(tmp, op)
}

// drawTextCentered 在给定宽度内水平居中
func drawTextCentered(dst *ebiten.Image, s string, centerX, y, scale int) {
	w, _ := textSize(s)
	drawText(dst, s, centerX-w*scale/2, y, scale)
}

func textSize(s string) (int, int) {
	lines := strings.Split(s, "\n")

	// 调试字体是等宽的，宽度按字符数而不是字节数算
	maxLen := 0
	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n > maxLen {
			maxLen = n
		}
	}

	return maxLen*glyphW + 2, len(lines)*glyphH + 2
}

func fillRect(dst *ebiten.Image, x, y, w, h float64, clr color.Color) {
	vector.DrawFilledRect(dst, float32(x), float32(y), float32(w), float32(h), clr, false)
}

func strokeRect(dst *ebiten.Image, x, y, w, h, lineW float64, clr color.Color) {
	vector.StrokeRect(dst, float32(x), float32(y), float32(w), float32(h), float32(lineW), clr, false)
}

func fillCircle(dst *ebiten.Image, cx, cy, r float64, clr color.Color) {
	vector.DrawFilledCircle(dst, float32(cx), float32(cy), float32(r), clr, true)
}

func withAlpha(c color.RGBA, a uint8) color.RGBA {
	c.A = a
	return c
}

func hexToColor(hex string) color.Color {
	return canvas.ParseHexColor(hex)
}
