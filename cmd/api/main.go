package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop/internal/config"
	"shop/internal/handler"
	"shop/internal/infra/db"
	"shop/internal/infra/events"
	infraRepo "shop/internal/infra/repository"
	"shop/internal/infra/session"
	"shop/internal/infra/token"
	"shop/internal/logging"
	"shop/internal/repository"
	"shop/internal/server"
	"shop/internal/usecase"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type eventPublisher interface {
	usecase.OrderEventPublisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	//DB接続
	gormDB, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	checks := map[string]handler.Check{
		"db": func(ctx context.Context) error { return db.Ping(ctx, gormDB) },
	}

	//セッション（カート）の保存先
	var sessions repository.SessionStore
	switch cfg.SessionBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		store := session.NewRedisStore(rdb, cfg.SessionTTL)
		checks["redis"] = store.Ping
		sessions = store
	default:
		sessions = session.NewMemoryStore(cfg.SessionTTL)
	}

	//注文イベント（broker未設定なら送らない）
	var publisher eventPublisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.OrderEventsTopic)
	}
	defer publisher.Close()

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	profileRepo := infraRepo.NewProfileGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	issuer, err := token.NewJWTIssuer(cfg.JWTSecret, 15*time.Minute)
	if err != nil {
		return err
	}

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(productRepo, sessions)
	orderUC := usecase.NewOrderUsecase(txm, profileRepo, sessions, publisher, idGen, clock)
	profileUC := usecase.NewProfileUsecase(profileRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, auditRepo, publisher, idGen, clock)
	authUC := usecase.NewAdminAuthUsecase(
		userRepo,
		usecase.NewBcryptPasswordHasher(12),
		usecase.NewBcryptPasswordVerifier(),
		issuer,
		clock,
	)

	created, err := authUC.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		log.Info("admin user created", zap.String("email", cfg.AdminEmail))
	}

	//Handler生成
	e := server.New(log)
	server.RegisterRoutes(e, cfg, sessions, userRepo, server.Handlers{
		Products:    handler.NewProductHandler(productUC),
		Cart:        handler.NewCartHandler(cartUC),
		Orders:      handler.NewOrderHandler(orderUC),
		Profile:     handler.NewProfileHandler(profileUC),
		AdminOrders: handler.NewAdminOrderHandler(adminOrderUC),
		Auth:        handler.NewAuthHandler(authUC),
		Health:      handler.NewHealthHandler(checks),
	})

	addr := cfg.Port
	if addr == "" || addr[0] != ':' {
		addr = ":" + addr
	}
	if addr == ":" {
		addr = ":8080"
	}
	return server.Start(ctx, e, addr, log)
}
