package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type AppConfig struct {
	// 游戏服务器的 HTTP(S) 地址，WebSocket 地址由此推导
	ServerURL string `mapstructure:"server_url"`
	LogLevel  string `mapstructure:"log_level"`
	// 客户端本地数据目录（玩家身份、已完成的故事）
	DataDir string `mapstructure:"data_dir"`
	// 故事画廊的本地监听端口
	GalleryPort int `mapstructure:"gallery_port"`
}

var cfg *AppConfig

func GetConfig() *AppConfig {
	if cfg == nil {
		cfg = InitConfig()
	}

	return cfg
}

func InitConfig() *AppConfig {
	v := viper.New()

	v.SetConfigFile("app_config")
	v.SetConfigType("json")
	v.AddConfigPath(".")

	// 客户端的配置全部有默认值，配置文件是可选的
	v.SetDefault("server_url", "https://typedrawtype.com")
	v.SetDefault("log_level", "info")
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("gallery_port", 8790)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			if !os.IsNotExist(err) {
				panic(fmt.Errorf("加载配置失败: %w", err))
			}
		}
	}

	var config AppConfig

	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("解析配置失败: %w", err))
	}

	return &config
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".tdt-client"
	}

	return filepath.Join(base, "tdt-client")
}
