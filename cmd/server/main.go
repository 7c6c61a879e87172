package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/catalog-next/internal/app"
	"github.com/catalog-next/internal/config"
	"github.com/catalog-next/internal/logger"
	"github.com/catalog-next/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
)

func main() {
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "run mode: all (default), api, worker")
	flag.Parse()

	printStartupBanner(mode)

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	release := cfg.Server.Mode == "release"
	for name, secret := range map[string]string{
		"jwt.access_secret":  cfg.JWT.AccessSecret,
		"jwt.refresh_secret": cfg.JWT.RefreshSecret,
	} {
		if !isWeakSecret(secret) {
			continue
		}
		if release {
			stdLog.Fatalf("%s is weak or still the default value, configure a strong random secret", name)
		}
		logger.Warnw("weak_jwt_secret", "key", name)
	}
	if cfg.JWT.AccessSecret == cfg.JWT.RefreshSecret {
		logger.Warnw("jwt_secrets_identical")
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("database init failed: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("database migration failed: %v", err)
	}

	adminUser := os.Getenv("CN_DEFAULT_ADMIN_USERNAME")
	adminEmail := os.Getenv("CN_DEFAULT_ADMIN_EMAIL")
	adminPass := os.Getenv("CN_DEFAULT_ADMIN_PASSWORD")
	if release && adminPass == "" {
		logger.Warnw("default_admin_skipped", "reason", "CN_DEFAULT_ADMIN_PASSWORD not set")
	} else if err := models.InitDefaultAdmin(adminUser, adminEmail, adminPass); err != nil {
		logger.Warnw("default_admin_init_failed", "error", err)
	}

	if release {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("server exited: %v", err)
	}
}

func printStartupBanner(mode string) {
	fmt.Println(ansiCyan + ansiBold + "catalog-next" + ansiReset + ansiDim + " product catalog and order API" + ansiReset)
	fmt.Println(ansiDim + "mode: " + mode + ansiReset)
	fmt.Println(ansiDim + strings.Repeat("-", 48) + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	return strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key")
}
