package canvas

// FitRect 是位图按 object-fit: contain 规则放进显示框后的矩形
// （保持宽高比，居中，多余部分留白）
type FitRect struct {
	X float64
	Y float64
	W float64
	H float64
}

// ContainFit 计算 contain 适配矩形。
// 前置条件：位图尺寸必须大于零，显示框为零时返回零矩形。
func ContainFit(boxW, boxH, bitmapW, bitmapH float64) FitRect {
	if boxW <= 0 || boxH <= 0 {
		return FitRect{}
	}

	doRatio := bitmapW / bitmapH
	cRatio := boxW / boxH

	var targetW, targetH float64

	if doRatio > cRatio {
		targetW = boxW
		targetH = targetW / doRatio
	} else {
		targetH = boxH
		targetW = targetH * doRatio
	}

	return FitRect{
		X: (boxW - targetW) / 2,
		Y: (boxH - targetH) / 2,
		W: targetW,
		H: targetH,
	}
}

// NormalizePoint 把原始输入设备坐标换算成位图像素坐标。
// 显示框尺寸随窗口变化，所以每个事件都要重新计算，不能缓存。
// 结果不做裁剪，越界坐标原样返回，由调用方决定是否丢弃。
func NormalizePoint(boxLeft, boxTop, boxW, boxH, bitmapW, bitmapH, clientX, clientY float64) (float64, float64) {
	fit := ContainFit(boxW, boxH, bitmapW, bitmapH)
	if fit.W == 0 || fit.H == 0 {
		return 0, 0
	}

	scaleX := bitmapW / fit.W
	scaleY := bitmapH / fit.H

	x := (clientX - boxLeft - fit.X) * scaleX
	y := (clientY - boxTop - fit.Y) * scaleY

	return x, y
}
