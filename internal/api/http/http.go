package http

import (
	"fmt"

	"tdt-client/internal/state"

	"github.com/kataras/iris/v12"
)

// RunGallery 在本地起一个故事画廊服务：
// 游戏结束后保存下来的故事可以在浏览器里翻看、分享到局域网。
// 阻塞运行，一般放在独立协程里。
func RunGallery(appState *state.AppState) error {
	app := iris.Default()

	app.Get("/", ListGames(appState))

	app.Get("/g/{gameId}", ShowStories(appState))

	app.Get("/image/{gameId}/{file}", ServeImage(appState))

	addr := fmt.Sprintf("127.0.0.1:%d", appState.Cfg.GalleryPort)

	return app.Listen(addr)
}
