package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// InitLogger 初始化全局日志器。
// 图形界面下 stderr 往往不可见，因此额外写入数据目录下的日志文件。
func InitLogger(logLevel string, dataDir string) {
	cfg := zap.NewDevelopmentConfig()

	switch logLevel {
	case "debug":
		cfg.Level.SetLevel(zap.DebugLevel)
	case "info":
		cfg.Level.SetLevel(zap.InfoLevel)
	case "warn":
		cfg.Level.SetLevel(zap.WarnLevel)
	case "error":
		cfg.Level.SetLevel(zap.ErrorLevel)
	default:
		cfg.Level.SetLevel(zap.InfoLevel)
	}

	if dataDir != "" {
		if err := os.MkdirAll(dataDir, 0o755); err == nil {
			cfg.OutputPaths = append(cfg.OutputPaths, filepath.Join(dataDir, "client.log"))
		}
	}

	lgr, err := cfg.Build()
	if err != nil {
		panic(fmt.Errorf("构建日志器失败: %w", err))
	}

	zap.ReplaceGlobals(lgr)
}
