package canvas

import "math"

// 画笔目录的逻辑粗细（位图像素），从细到粗
var brushPixelSizes = []int{2, 8, 16, 32, 64}

// 默认选中第二档，与默认黑色搭配手感最好
const DEFAULT_BRUSH_INDEX = 1

// Brush 的 PixelSize 是画到位图上的逻辑线宽，
// DisplaySize 是按当前内容缩放换算出的屏幕尺寸，只用于展示画笔按钮。
type Brush struct {
	PixelSize   int
	DisplaySize int
}

// MakeBrushes 按内容缩放生成画笔目录。
// 缩放变化时整个目录重新生成，选中的始终是下标而不是具体尺寸，
// 因此窗口缩放不会让选中项失效。
func MakeBrushes(scale float64) []Brush {
	brushes := make([]Brush, 0, len(brushPixelSizes))

	for _, size := range brushPixelSizes {
		brushes = append(brushes, Brush{
			PixelSize:   size,
			DisplaySize: int(math.Ceil(float64(size) * scale)),
		})
	}

	return brushes
}

// 调色盘，取自原版的颜色表（每行一个色系，从浅到深）
var Palette = []string{
	"#000", "#555", "#AAA", "#FFF",
	"#F00", "#F80", "#FF0", "#0F0",
	"#0FF", "#08F", "#00F", "#80F", "#F0F",
	"#A00", "#520", "#050", "#005",
}

const DefaultColor = "#000"
