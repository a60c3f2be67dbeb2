// @title 教育门户后端 API
// @version 1.0
// @description 课程浏览、测验与教师内容管理；后端不可用时自动切换到离线模式。

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"edu_portal_backend/internal/app"
	"edu_portal_backend/internal/config"
	"edu_portal_backend/pkg/configwatcher"
	"edu_portal_backend/pkg/logger"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件目录")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 启动失败时等待片刻后用重新加载的配置重建应用
	for {
		delay, err := run(ctx, *configDir, *migrate || *migrateOnly, *migrateOnly)
		if err == nil || ctx.Err() != nil {
			return
		}

		logger.Log.Error("Application failed, restarting", zap.Error(err), zap.Duration("delay", delay))
		log.Printf("Application failed: %v, restarting in %s", err, delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}

// run 返回下次重启前的等待时间
func run(ctx context.Context, configDir string, forceMigrate, migrateOnly bool) (time.Duration, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return config.DefaultReloadDelay, err
	}
	cfg.ForceMigrate = forceMigrate

	delay := cfg.Server.ReloadDelay
	if delay <= 0 {
		delay = config.DefaultReloadDelay
	}

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		return delay, err
	}

	if migrateOnly {
		application.Close()
		log.Println("数据库迁移完成，退出程序")
		return delay, nil
	}

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	go func() {
		path := filepath.Join(configDir, "config.yaml")
		if err := configwatcher.WatchConfig(watchCtx, path, application.ApplyConfig); err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()

	return delay, application.Run(ctx)
}
