// Package app wires repositories, services and HTTP modules together.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lostfound-api/internal/core/auth"
	"lostfound-api/internal/core/cache"
	"lostfound-api/internal/core/config"
	"lostfound-api/internal/core/database"
	"lostfound-api/internal/repo"
	"lostfound-api/internal/service"
	"lostfound-api/internal/transport/http/handler"
	"lostfound-api/internal/transport/http/router"
)

type Deps struct {
	DB  *gorm.DB
	JWT *auth.JWTer
	Log *zap.Logger
	// Cache 为 nil 时 token 黑名单走进程内存，列表不缓存
	Cache   *cache.Cache
	ListTTL time.Duration
	// LockRegisterRole 见 config.Auth
	LockRegisterRole bool
}

type App struct {
	Auth      *service.AuthService
	Users     *service.UserService
	Items     *service.ItemService
	Feedbacks *service.FeedbackService
	Registry  *router.Registry
	log       *zap.Logger
}

func New(d Deps) *App {
	l := d.Log
	if l == nil {
		l = zap.NewNop()
	}
	users := repo.NewUserRepo(d.DB)

	var (
		denylist  auth.Denylist = auth.NewMemoryDenylist()
		listCache service.ListCache
	)
	if d.Cache != nil {
		denylist, listCache = d.Cache, d.Cache
	}

	a := &App{
		Auth:      service.NewAuthService(users, d.JWT, denylist, l.Named("auth"),
			service.WithLockedRegisterRole(d.LockRegisterRole)),
		Users:     service.NewUserService(users, l.Named("users")),
		Items:     service.NewItemService(repo.NewItemRepo(d.DB), listCache, d.ListTTL, l.Named("items")),
		Feedbacks: service.NewFeedbackService(repo.NewFeedbackRepo(d.DB), l.Named("feedback")),
		Registry:  &router.Registry{},
		log:       l,
	}
	a.Registry.Register(
		handler.NewAuthModule(a.Auth),
		handler.NewItemModule(a.Items),
		handler.NewFeedbackModule(a.Feedbacks),
		handler.NewUserAdminModule(a.Users),
	)
	return a
}

func (a *App) APIEngine(lim router.Limits) *gin.Engine {
	return router.NewAPIEngine(a.log, a.Auth, a.Registry, lim)
}

func (a *App) AdminEngine(lim router.Limits) *gin.Engine {
	return router.NewAdminEngine(a.log, a.Auth, a.Registry, lim)
}

// JWTFrom 由配置构造 JWTer
func JWTFrom(c config.JWT) *auth.JWTer {
	return &auth.JWTer{
		Secret:     []byte(c.Secret),
		Issuer:     c.Issuer,
		TTL:        time.Duration(c.AccessTokenTTLMin) * time.Minute,
		RefreshTTL: time.Duration(c.RefreshTTLMin) * time.Minute,
	}
}

// Bootstrap 打开数据库（按需迁移）和 Redis，返回装配好的 App 与关闭函数
func Bootstrap(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, func(), error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("db open: %w", err)
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	closers := []func(){func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}

	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := c.Ping(pingCtx)
		cancel()
		if err != nil {
			_ = c.Close()
			cleanup()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		closers = append(closers, func() { _ = c.Close() })
		l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	} else {
		l.Warn("redis not configured; token denylist is per-process")
	}

	a := New(Deps{
		DB:      db,
		JWT:     JWTFrom(cfg.JWT),
		Log:     l,
		Cache:   c,
		ListTTL: time.Duration(cfg.Redis.ListTTLSec) * time.Second,

		LockRegisterRole: cfg.Auth.LockRegisterRole,
	})
	return a, cleanup, nil
}
