package http

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"tdt-client/internal/service/dto"
	"tdt-client/internal/state"

	"github.com/kataras/iris/v12"
)

// ListGames 列出本地保存过故事的所有游戏
func ListGames(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		games := ListSavedGames(appState.Cfg.DataDir)

		var b strings.Builder

		b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\">")
		b.WriteString("<title>Type Draw Type</title></head><body>")
		b.WriteString("<h1>已保存的故事</h1>")

		if len(games) == 0 {
			b.WriteString("<p>还没有保存过任何故事</p>")
		} else {
			b.WriteString("<ul>")
			for _, g := range games {
				fmt.Fprintf(&b, "<li><a href=\"/g/%s\">%s</a></li>",
					html.EscapeString(g), html.EscapeString(g))
			}
			b.WriteString("</ul>")
		}

		b.WriteString("</body></html>")

		ctx.HTML("%s", b.String())
	}
}

// ShowStories 渲染一局游戏的全部故事：
// 按轮次交替展示文字和画作，和游戏里接龙的顺序一致。
func ShowStories(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		gameID := ctx.Params().Get("gameId")

		if !dto.IsValidGameID(gameID) {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{
				"error": "游戏口令无效",
			})
			return
		}

		stories, err := LoadStories(appState.Cfg.DataDir, gameID)
		if err != nil {
			ctx.StatusCode(iris.StatusNotFound)
			ctx.JSON(iris.Map{
				"error": "没有这局游戏的故事",
			})
			return
		}

		var b strings.Builder

		b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\">")
		fmt.Fprintf(&b, "<title>故事 %s</title></head><body>", html.EscapeString(gameID))
		fmt.Fprintf(&b, "<h1>游戏 %s</h1>", html.EscapeString(gameID))

		for si, story := range stories {
			fmt.Fprintf(&b, "<h2>故事 %d</h2>", si+1)

			for _, el := range story.Elements {
				author := el.Player.Name

				switch el.Type {
				case dto.ELEMENT_TEXT:
					fmt.Fprintf(&b, "<blockquote>%s</blockquote><p>%s</p>",
						html.EscapeString(el.Content), html.EscapeString(author))
				case dto.ELEMENT_IMAGE:
					fmt.Fprintf(&b, "<p><img src=\"/image/%s/%s\" width=\"720\"></p><p>%s</p>",
						html.EscapeString(gameID), html.EscapeString(el.Content),
						html.EscapeString(author))
				}
			}
		}

		b.WriteString("</body></html>")

		ctx.HTML("%s", b.String())
	}
}

// ServeImage 提供保存在本地的画作文件
func ServeImage(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		gameID := ctx.Params().Get("gameId")
		file := ctx.Params().Get("file")

		// 文件名由保存逻辑生成，这里仍然挡掉路径穿越
		if !dto.IsValidGameID(gameID) ||
			file != filepath.Base(file) ||
			!strings.HasSuffix(file, ".png") {
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		path := filepath.Join(gameDir(appState.Cfg.DataDir, gameID), file)

		if _, err := os.Stat(path); err != nil {
			ctx.StatusCode(iris.StatusNotFound)
			return
		}

		ctx.ServeFile(path)
	}
}
