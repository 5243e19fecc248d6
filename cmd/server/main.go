package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/storefront-next/internal/app"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"

	"github.com/gin-gonic/gin"
)

const releaseMode = "release"

var weakSecretMarkers = []string{"change-me", "change-in-production", "your-secret-key"}

func main() {
	mode := flag.String("mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	fmt.Println("\033[95mStorefront API\033[0m \033[2morders · inventory · coupons · loyalty\033[0m")

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	if err := run(cfg, *mode); err != nil {
		logger.StdLogger().Fatalf("启动失败: %v", err)
	}
}

func run(cfg *config.Config, rawMode string) error {
	mode, err := app.ParseMode(rawMode)
	if err != nil {
		return err
	}
	release := cfg.Server.Mode == releaseMode
	if err := checkSecrets(cfg, release); err != nil {
		return err
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, !release); err != nil {
		return fmt.Errorf("数据库初始化失败: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	seedAdmin(cfg.Admin, release)

	if release {
		gin.SetMode(gin.ReleaseMode)
	}
	return app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	})
}

// checkSecrets 生产环境拒绝弱 JWT 密钥，其余环境仅告警
func checkSecrets(cfg *config.Config, release bool) error {
	if !isWeakSecret(cfg.JWT.SecretKey) && !isWeakSecret(cfg.UserJWT.SecretKey) {
		return nil
	}
	if release {
		return errors.New("JWT secret 过弱或仍为默认值，请在生产环境中配置强随机密钥")
	}
	logger.Warnw("jwt_secret_weak", "hint", "replace jwt.secret and user_jwt.secret before going to production")
	return nil
}

// seedAdmin 生产环境必须显式配置管理员密码
func seedAdmin(admin config.AdminConfig, release bool) {
	if release && admin.Password == "" {
		logger.Warnw("default_admin_skipped", "reason", "ADMIN_PASSWORD is empty")
		return
	}
	if err := models.InitDefaultAdmin(admin.Username, admin.Password); err != nil {
		logger.Warnw("default_admin_init_failed", "error", err)
	}
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	for _, marker := range weakSecretMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}
