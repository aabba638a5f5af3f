package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"fournil/internal/admin"
	"fournil/internal/cart"
	"fournil/internal/catalog"
	"fournil/internal/checkout"
	"fournil/internal/commons"
	"fournil/internal/config"
	"fournil/internal/infrastructure/logger"
	"fournil/internal/infrastructure/mysql"
	"fournil/internal/notify"
	"fournil/internal/order"
	"fournil/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	if err := mysql.RunMigrations(db, cfg.Database.MigrationsDir, zapLogger); err != nil {
		zapLogger.Fatal("running migrations", zap.Error(err))
	}

	products, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		zapLogger.Fatal("loading catalog", zap.Error(err))
	}

	mailer := newMailer(cfg.Mailer, zapLogger)

	cartSvc, cartCtrl := cart.NewModule(cart.NewStore(cfg.Cart, zapLogger), zapLogger)
	checkoutCtrl := checkout.NewModule(db, cartSvc, mailer, zapLogger)
	ordersCtrl := order.NewModule(db, zapLogger)
	authSvc, authCtrl := admin.NewModule(db, mailer, cfg.Admin, zapLogger)

	router := server.NewRouter(server.Controllers{
		Catalog:  catalog.NewController(products, zapLogger),
		Cart:     cartCtrl,
		Checkout: checkoutCtrl,
		Auth:     authCtrl,
		Orders:   ordersCtrl,
		Sessions: authSvc,
	}, zapLogger)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}

func loadConfig() (*config.Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return commons.LoadConfig(path)
	}
	return config.Load()
}

// newMailer picks the real mailer when an API key is configured and the
// logging no-op otherwise, so local runs work without email credentials.
func newMailer(cfg config.MailerConfig, zapLogger *zap.Logger) notify.Mailer {
	if cfg.APIKey == "" {
		zapLogger.Warn("no mailer API key configured, outbound email disabled")
		return notify.NewNoopMailer(zapLogger)
	}
	return notify.NewHTTPMailer(cfg, zapLogger)
}
