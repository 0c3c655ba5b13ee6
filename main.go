package main

import (
	"fmt"
	"os"

	gallery "tdt-client/internal/api/http"
	"tdt-client/internal/api/rest"
	"tdt-client/internal/api/ws"
	"tdt-client/internal/config"
	"tdt-client/internal/identity"
	"tdt-client/internal/logger"
	"tdt-client/internal/service/dto"
	"tdt-client/internal/service/session"
	"tdt-client/internal/state"
	"tdt-client/internal/view"

	"go.uber.org/zap"
)

func main() {
	// 加载配置
	cfg := config.InitConfig()

	// 初始化日志器
	logger.InitLogger(cfg.LogLevel, cfg.DataDir)

	// 加载（或首次生成）持久化的玩家身份
	identStore := identity.NewFileStore(cfg.DataDir)

	ident, err := identity.LoadOrCreate(identStore)
	if err != nil {
		zap.S().Fatalf("无法加载玩家身份: %v", err)
	}

	// 组装应用状态
	appState := state.NewAppState(cfg, ident, identStore)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	restClient := rest.NewClient(cfg.ServerURL)

	switch os.Args[1] {
	case "create":
		// 创建一局新游戏，创建者直接成为第一个玩家
		name := ident.Name
		if len(os.Args) > 2 {
			name = os.Args[2]
		}

		if dto.IsBlank(name) {
			fmt.Println("Please pass your player name: tdt-client create <name>")
			os.Exit(2)
		}

		if name != appState.Ident.Name {
			appState.Ident.Name = name
			if err := identStore.Save(appState.Ident); err != nil {
				zap.L().Warn("保存玩家身份失败", zap.Error(err))
			}
		}

		gameID, err := restClient.CreateGame(ident.PlayerID, name, ident.Face)
		if err != nil {
			zap.S().Fatalf("创建游戏失败: %v", err)
		}

		fmt.Println("Created game:", gameID)
		fmt.Println("Invite players:", restClient.JoinURL(gameID))

		runGame(appState, restClient, gameID)

	case "gallery":
		// 只启动本地故事画廊，不进入游戏
		if err := gallery.RunGallery(appState); err != nil {
			zap.S().Fatalf("画廊启动失败: %v", err)
		}

	default:
		gameID := os.Args[1]

		// 口令在边界上校验，不合法的输入根本不会发起连接
		if !dto.IsValidGameID(gameID) {
			fmt.Println("Invalid game code:", gameID)
			usage()
			os.Exit(2)
		}

		runGame(appState, restClient, gameID)
	}
}

func runGame(appState *state.AppState, restClient *rest.Client, gameID string) {
	machine := session.NewMachine(
		gameID,
		appState.Ident,
		func(ev session.LinkEvents) (session.Link, error) {
			wsURL, err := ws.URL(appState.Cfg.ServerURL)
			if err != nil {
				return nil, err
			}

			return ws.Dial(wsURL, ev)
		},
		nil, // 视图按帧轮询阶段，不需要变更回调
	)

	// 画廊顺带起在后台，游戏结束保存故事后马上就能在浏览器里看
	go func() {
		if err := gallery.RunGallery(appState); err != nil {
			zap.L().Warn("画廊启动失败", zap.Error(err))
		}
	}()

	app := view.NewApp(appState, machine, restClient,
		func(gameID string, stories []dto.Story) error {
			return gallery.SaveStories(
				appState.Cfg.DataDir, gameID, stories, restClient.FetchImageBytes)
		})

	if err := view.Run(app); err != nil {
		zap.S().Fatalf("客户端异常退出: %v", err)
	}
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  tdt-client <game-code>       join a game")
	fmt.Println("  tdt-client create [name]     create a new game")
	fmt.Println("  tdt-client gallery           browse saved stories")
}
