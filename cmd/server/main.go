package main

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"marketplace/internal/cache"
	"marketplace/internal/cart"
	"marketplace/internal/checkout"
	"marketplace/internal/config"
	"marketplace/internal/database"
	"marketplace/internal/handlers"
	"marketplace/internal/middleware"
	"marketplace/internal/obs"
	"marketplace/internal/repository"
	"marketplace/internal/routes"
	"marketplace/internal/utils"
	"marketplace/internal/web"
)

func main() {
	cfg := config.Load()
	obs.InitLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		fatal("invalid configuration", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	db, err := database.OpenSQL(cfg)
	if err != nil {
		fatal("open relational store", err)
	}
	defer database.CloseSQL(db)

	rdb, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		fatal("connect redis", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	scylla, err := database.ConnectScylla(cfg)
	if err != nil {
		fatal("connect scylla", err)
	}
	if scylla != nil {
		defer scylla.Close()
	}

	h, err := handlers.New(wire(cfg, db, rdb, scylla))
	if err != nil {
		fatal("build handlers", err)
	}
	tmpl, err := web.Templates()
	if err != nil {
		fatal("parse templates", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           routes.NewRouter(h, tmpl, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		obs.Logger.Info("http server listening", "addr", httpServer.Addr, "env", cfg.Env)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("http server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		obs.Logger.Error("shutdown", "err", err)
	}
	obs.Logger.Info("server stopped")
}

// wire picks the Redis or in-process variant of every optional backend.
func wire(cfg config.Config, db *gorm.DB, rdb *redis.Client, scylla *gocql.Session) handlers.Deps {
	users := repository.NewGormUsers(db)
	products := repository.NewGormProducts(db)
	orders := repository.NewGormOrders(db)

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		// development only; Validate refuses this in production
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			fatal("generate session secret", err)
		}
		obs.Logger.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}
	store := middleware.NewCookieStore(secret, cfg.SessionMaxAge, cfg.SessionSecure)

	d := handlers.Deps{
		Users:        users,
		Products:     products,
		Orders:       orders,
		Materializer: checkout.NewMaterializer(products, orders, repository.NewGormTx(db)),
		Sessions:     middleware.NewSessions(store, cfg.SessionName, cfg.SessionMaxAge, cfg.SessionSecure, users),
		CSRF:         middleware.NewCSRF(secret, cfg.SessionSecure),
		LockTTL:      cfg.CheckoutLockTTL,
		Logger:       obs.Logger,
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	if rdb != nil {
		d.Carts = cart.NewRedisStore(rdb, cfg.CartTTL)
		d.Throttle = cache.NewRedisThrottle(rdb, "login", cfg.LoginMaxAttempts, cfg.LoginCooldown)
		if cfg.CheckoutSingleFlight {
			d.Locker = cache.NewRedisLocker(rdb)
		}
	} else {
		d.Carts = cart.NewMemoryStore()
		d.Throttle = cache.NewMemoryThrottle(cfg.LoginMaxAttempts, cfg.LoginCooldown)
		if cfg.CheckoutSingleFlight {
			d.Locker = cache.NewMemoryLocker()
		}
	}

	if scylla != nil {
		d.Auditor = utils.NewScyllaAuditor(scylla)
	} else {
		d.Auditor = utils.NewLogAuditor(obs.Logger)
	}

	if cfg.SMTPHost != "" {
		d.Notifier = utils.NewSMTPNotifier(utils.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	} else {
		d.Notifier = utils.NewLogNotifier(obs.Logger)
	}
	return d
}

func fatal(msg string, err error) {
	obs.Logger.Error(msg, "err", err)
	os.Exit(1)
}
