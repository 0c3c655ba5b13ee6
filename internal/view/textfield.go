package view

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// TextField 是最简单的单行文本输入：
// 每帧把新输入的字符追加进来，退格支持按住连删。
type TextField struct {
	runes []rune
	max   int
}

func NewTextField(max int) *TextField {
	return &TextField{max: max}
}

// Update 采集本帧的键盘输入
func (tf *TextField) Update() {
	for _, r := range ebiten.AppendInputChars(nil) {
		if r < ' ' {
			continue
		}

		if tf.max > 0 && len(tf.runes) >= tf.max {
			break
		}

		tf.runes = append(tf.runes, r)
	}

	if repeating(ebiten.KeyBackspace) && len(tf.runes) > 0 {
		tf.runes = tf.runes[:len(tf.runes)-1]
	}
}

func (tf *TextField) Text() string {
	return string(tf.runes)
}

func (tf *TextField) SetText(s string) {
	tf.runes = []rune(s)
}

func (tf *TextField) Clear() {
	tf.runes = tf.runes[:0]
}

// repeating 实现按住重复触发：首帧立即触发，之后每隔几帧触发一次
func repeating(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)

	return d == 1 || (d >= 24 && d%4 == 0)
}
