package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"Gin_postgres_redis_rental_kiosk/config"
	"Gin_postgres_redis_rental_kiosk/db"
	"Gin_postgres_redis_rental_kiosk/notify"
	"Gin_postgres_redis_rental_kiosk/rental"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router  *gin.Engine
	DB      *gorm.DB
	RDB     *redis.Client // REDIS_ENABLED=false 时为 nil
	Config  *config.Config
	Log     *slog.Logger
	Repo    *db.Repo
	Rentals *rental.Service
	Sweeps  *rental.SweepScheduler // KIOSK_SWEEP_INTERVAL=0 时为 nil
}

// New connects the store and Redis and wires the rental engine.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	// --- DB ---
	dbConn, err := db.ConnectDB(cfg.Database, log)
	if err != nil {
		return nil, err
	}

	// --- Redis ---
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
	}

	return Build(cfg, log, dbConn, rdb)
}

// Build wires an App around already opened connections. rdb may be nil.
func Build(cfg *config.Config, log *slog.Logger, dbConn *gorm.DB, rdb *redis.Client) (*App, error) {
	loc, err := cfg.Kiosk.DayLocation()
	if err != nil {
		return nil, err
	}

	var notifier notify.Notifier = notify.Nop{}
	if rdb != nil {
		notifier = notify.NewRedisPublisher(rdb, cfg.Redis.Channel)
	}

	repo := db.NewRepo(dbConn)
	svc := rental.NewService(repo,
		rental.WithNotifier(notifier),
		rental.WithLogger(log),
		rental.WithDayLocation(loc),
		rental.WithLocale(cfg.Kiosk.Locale),
	)

	// --- Gin ---
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(RequestID(), RequestLogger(log), Recovery(log, svc.Locale()))
	useCORS(r, cfg.Server.WebOrigin)

	a := &App{
		Router: r, DB: dbConn, RDB: rdb, Config: cfg, Log: log,
		Repo: repo, Rentals: svc,
	}
	if cfg.Kiosk.SweepInterval > 0 {
		a.Sweeps = rental.NewSweepScheduler(svc, cfg.Kiosk.SweepInterval, log)
	}
	return a, nil
}

func (a *App) Close() {
	if a.Sweeps != nil {
		a.Sweeps.Stop()
	}
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
