package view

import (
	"fmt"
	"strings"

	"tdt-client/internal/identity"
	"tdt-client/internal/service/dto"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

func (a *App) updateJoin() {
	a.nameField.Update()

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		a.face = identity.NextFace(a.face)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) && !a.submitted {
		name := strings.TrimSpace(a.nameField.Text())
		if dto.IsBlank(name) {
			return
		}

		// 名字和头像随加入动作一起持久化，下次打开客户端直接预填
		a.st.Ident.Name = name
		a.st.Ident.Face = a.face

		if err := a.st.IdentStore.Save(a.st.Ident); err != nil {
			zap.L().Warn("保存玩家身份失败", zap.Error(err))
		}

		if err := a.machine.Join(name, a.face); err != nil {
			zap.L().Error("加入游戏失败", zap.Error(err))
			return
		}

		a.submitted = true
	}
}

func (a *App) drawJoin(screen *ebiten.Image) {
	cx := a.winW / 2

	drawTextCentered(screen, "Join the game!", cx, 100, 3)

	// 头像：字体脸字母 + 切换提示
	fillCircle(screen, float64(cx), 240, 56, colorPanel)
	drawTextCentered(screen, a.face, cx, 240-glyphH*2, 4)
	drawTextCentered(screen, "Press Tab to change your face", cx, 320, 1)

	name := a.nameField.Text()

	fillRect(screen, float64(cx-180), 370, 360, 40, colorPanel)
	drawText(screen, name+"_", cx-170, 382, 2)
	drawTextCentered(screen, "Type your name, then press Enter", cx, 430, 1)

	if a.submitted {
		drawTextCentered(screen, "Joining...", cx, 480, 2)
	}
}

func (a *App) updateWaitForPlayers(p dto.WaitForPlayersPhase) {
	// 至少要凑齐两个玩家才能开始
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) && len(p.Players) >= 2 {
		if err := a.machine.Start(); err != nil {
			zap.L().Error("开始游戏失败", zap.Error(err))
		}
	}
}

func (a *App) ensureQR() {
	if a.qrTex != nil {
		return
	}

	url := a.rest.JoinURL(a.machine.GameID())

	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		zap.L().Warn("生成二维码失败", zap.Error(err))
		return
	}

	a.qrTex = ebiten.NewImageFromImage(q.Image(220))
}

func (a *App) drawPlayerList(screen *ebiten.Image, players []dto.PlayerInfo, x, y int) {
	for i, p := range players {
		label := fmt.Sprintf("[%s] %s", p.Face, p.Name)
		if p.IsCreator {
			label += " (host)"
		}

		drawText(screen, label, x, y+i*40, 2)
	}
}

func (a *App) drawWaitForPlayers(screen *ebiten.Image, p dto.WaitForPlayersPhase) {
	a.ensureQR()

	cx := a.winW / 2

	drawTextCentered(screen, "Waiting for players...", cx, 60, 3)

	url := a.rest.JoinURL(a.machine.GameID())
	drawTextCentered(screen, "Invite players: "+url, cx, 120, 2)

	if a.qrTex != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(a.winW-260), 160)
		screen.DrawImage(a.qrTex, op)
	}

	a.drawPlayerList(screen, p.Players, 80, 180)

	if len(p.Players) >= 2 {
		drawTextCentered(screen, "Press Enter to start the game", cx, a.winH-80, 2)
	} else {
		drawTextCentered(screen, "Need at least 2 players to start", cx, a.winH-80, 1)
	}
}

func (a *App) drawWaitForGameStart(screen *ebiten.Image, p dto.WaitForGameStartPhase) {
	cx := a.winW / 2

	drawTextCentered(screen, "Waiting for the host\nto start the game...", cx, 60, 3)

	a.drawPlayerList(screen, p.Players, 80, 180)
}

func (a *App) updateType(p dto.TypePhase) {
	a.ensureRefImage(p.DrawingSrc)

	a.textField.Update()

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) && !a.submitted {
		text := strings.TrimSpace(a.textField.Text())
		if dto.IsBlank(text) {
			return
		}

		if err := a.machine.Type(text); err != nil {
			zap.L().Error("提交文字失败", zap.Error(err))
			return
		}

		a.submitted = true
	}
}

// ensureRefImage 异步拉取本轮要描述的画作（第一轮没有）
func (a *App) ensureRefImage(src string) {
	if src == "" || a.refSrc == src {
		return
	}

	a.refSrc = src

	go func() {
		img, err := a.rest.FetchImage(src)
		if err != nil {
			zap.L().Warn("拉取参考画作失败", zap.String("src", src), zap.Error(err))
			return
		}

		a.refMu.Lock()
		a.refImg = img
		a.refMu.Unlock()
	}()
}

func (a *App) refTexture() *ebiten.Image {
	if a.refTex == nil {
		a.refMu.Lock()
		if a.refImg != nil {
			a.refTex = ebiten.NewImageFromImage(a.refImg)
			a.refImg = nil
		}
		a.refMu.Unlock()
	}

	return a.refTex
}

func (a *App) drawType(screen *ebiten.Image, p dto.TypePhase) {
	cx := a.winW / 2

	drawText(screen, fmt.Sprintf("Round %d of %d", p.Round, p.Rounds), 16, 12, 2)

	if p.DrawingSrc == "" {
		drawTextCentered(screen, "Write the first sentence of a story!", cx, 80, 2)
	} else {
		prompt := "What does this show?"
		if p.Artist != nil {
			prompt = fmt.Sprintf("What did %s draw here?", p.Artist.Name)
		}
		drawTextCentered(screen, prompt, cx, 60, 2)

		if tex := a.refTexture(); tex != nil {
			bounds := tex.Bounds()

			boxW := float64(a.winW - 160)
			boxH := float64(a.winH - 280)

			scale := boxW / float64(bounds.Dx())
			if s := boxH / float64(bounds.Dy()); s < scale {
				scale = s
			}

			w := float64(bounds.Dx()) * scale
			h := float64(bounds.Dy()) * scale

			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(scale, scale)
			op.GeoM.Translate((float64(a.winW)-w)/2, 100+(boxH-h)/2)
			screen.DrawImage(tex, op)
		} else {
			drawTextCentered(screen, "Loading drawing...", cx, a.winH/2, 2)
		}
	}

	inputY := a.winH - 120

	fillRect(screen, 80, float64(inputY), float64(a.winW-160), 40, colorPanel)
	drawText(screen, clipTail(a.textField.Text(), (a.winW-180)/(glyphW*2))+"_", 90, inputY+12, 2)

	if a.submitted {
		drawTextCentered(screen, "Submitted!", cx, inputY+60, 2)
	} else {
		drawTextCentered(screen, "Type your text, then press Enter", cx, inputY+60, 1)
	}
}

// clipTail 输入超宽时只显示末尾能放下的部分（光标总是可见）
func clipTail(s string, maxRunes int) string {
	r := []rune(s)
	if maxRunes > 0 && len(r) > maxRunes {
		return string(r[len(r)-maxRunes:])
	}

	return s
}

func (a *App) drawWaitForRoundFinish(screen *ebiten.Image, p dto.WaitForRoundFinishPhase) {
	cx := a.winW / 2

	action := "drawing"
	if p.IsTypeRound {
		action = "typing"
	}

	drawTextCentered(screen, "Waiting for other players\nto finish "+action+":", cx, 120, 3)

	a.drawPlayerList(screen, p.WaitingForPlayers, 80, 260)
}

func (a *App) drawStories(screen *ebiten.Image, p dto.StoriesPhase) {
	cx := a.winW / 2

	drawTextCentered(screen, "The game is finished!", cx, 120, 3)
	drawTextCentered(screen,
		fmt.Sprintf("%d stories have been created.", len(p.Stories)), cx, 200, 2)

	a.storiesMu.Lock()
	saving, saved, saveErr := a.storiesSaving, a.storiesSaved, a.storiesSaveErr
	a.storiesMu.Unlock()

	galleryURL := fmt.Sprintf("http://127.0.0.1:%d/g/%s",
		a.st.Cfg.GalleryPort, a.machine.GameID())

	switch {
	case saving:
		drawTextCentered(screen, "Saving stories...", cx, 280, 2)
	case saved:
		drawTextCentered(screen, "Read them in your browser:", cx, 280, 2)
		drawTextCentered(screen, galleryURL, cx, 330, 2)
	case saveErr != nil:
		drawTextCentered(screen, "Could not save the stories, sorry.", cx, 280, 2)
	}
}
