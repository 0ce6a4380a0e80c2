package main

import (
	"edu_translator_backend/internal/app"
	"edu_translator_backend/internal/config"
	"edu_translator_backend/pkg/logger"
	"errors"
	"flag"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/joho/godotenv"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件所在目录")
	envFile := flag.String("env", ".env", "本地环境变量文件，不存在时忽略")
	watch := flag.Bool("watch", true, "配置文件变更时热更新访问控制")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *watch {
		application.WatchConfig(filepath.Join(*configDir, "config.yaml"))
	}

	application.Run()
}
