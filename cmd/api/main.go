package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"tokenestate-backend/internal/adapter/eventlog"
	httpadp "tokenestate-backend/internal/adapter/http"
	"tokenestate-backend/internal/adapter/repository/mysql"
	"tokenestate-backend/internal/config"
	"tokenestate-backend/internal/domain/auth"
	"tokenestate-backend/internal/infrastructure/cache"
	"tokenestate-backend/internal/infrastructure/db"
	"tokenestate-backend/internal/logger"
	"tokenestate-backend/internal/usecase/escrow"
	"tokenestate-backend/internal/usecase/ledger"
	"tokenestate-backend/internal/usecase/loan"
	"tokenestate-backend/internal/usecase/registry"
	"tokenestate-backend/pkg/clock"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Initialize(logger.Config{
		Debug:  cfg.LogDebug,
		Fields: map[string]string{"service": "tokenestate-api"},
	}); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	dbOpts := db.DefaultOptions()
	dbOpts.Debug = cfg.LogDebug
	gdb, err := db.OpenGorm(cfg.MySQLDSN(), dbOpts)
	if err != nil {
		logger.Fatal("open mysql", zap.Error(err))
	}
	if err := mysql.AutoMigrate(gdb); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatal("open redis", zap.Error(err))
	}
	defer rdb.Close()

	var (
		clk   = clock.New()
		tx    = mysql.NewGormUoW(gdb)
		authz = auth.ContextAuthorizer{}
		pub   = eventlog.NewStreamPublisher(rdb, cfg.EventStream, cfg.EventStreamMax)
		eng   = ledger.NewEngine(ledger.Config{
			FeeBps:        uint32(cfg.FeeBps),
			FeeWallet:     cfg.FeeWallet,
			EscrowAccount: cfg.EscrowAccount,
		})
	)
	ledgerUC := ledger.NewUsecase(tx, authz, eng, pub)
	registryUC := registry.NewUsecase(tx, authz, auth.NewRegistrationPolicy(cfg.AdminAddress, cfg.BuilderWhitelist), eng, pub)
	loanUC := loan.NewUsecase(tx, authz, escrow.New(eng, clk), clk, pub, loan.Config{MaxDurationDays: uint32(cfg.MaxDurationDays)})

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger(), middleware.Recover())

	httpadp.Router{
		Health: httpadp.NewHandler(clk, map[string]httpadp.Pinger{
			"mysql": httpadp.PingFunc(db.Pinger(gdb)),
			"redis": httpadp.PingFunc(cache.Pinger(rdb)),
		}),
		Properties:     httpadp.NewPropertyHandler(registryUC, ledgerUC),
		Transfers:      httpadp.NewTransferHandler(ledgerUC),
		Loans:          httpadp.NewLoanHandler(loanUC),
		Redis:          rdb,
		IdempotencyTTL: cfg.IdempotencyTTL(),
	}.Mount(e)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.AppPort
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, zap.String("phase", "shutdown"))
	}
}
