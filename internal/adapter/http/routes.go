package http

import (
	"time"

	"tokenestate-backend/internal/adapter/middleware"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

type Router struct {
	Health     *Handler
	Properties *PropertyHandler
	Transfers  *TransferHandler
	Loans      *LoanHandler

	// Idempotency store for mutating routes; nil disables replay protection.
	Redis          redis.Cmdable
	IdempotencyTTL time.Duration
}

// Mount installs the validator, the principal middleware and every route on e.
func (r Router) Mount(e *echo.Echo) {
	e.Validator = NewValidator()
	e.Use(middleware.Principal())

	var mut []echo.MiddlewareFunc
	if r.Redis != nil {
		mut = append(mut, middleware.Idempotency(r.Redis, r.IdempotencyTTL))
	}

	e.GET("/health", r.Health.Health)

	p := e.Group("/properties")
	p.POST("", r.Properties.Register, mut...)
	p.GET("/:property_id", r.Properties.Get)
	p.GET("/:property_id/quote", r.Properties.Quote)
	p.GET("/:property_id/units", r.Properties.Units)
	p.GET("/:property_id/balances/:holder", r.Properties.BalanceOf)
	p.GET("/:property_id/holders", r.Properties.Holders)

	e.POST("/transfers", r.Transfers.Transfer, mut...)

	l := e.Group("/loans")
	l.POST("", r.Loans.CreateLoan, mut...)
	l.GET("/:loan_id", r.Loans.GetLoan)
	l.GET("/:loan_id/investors", r.Loans.Investors)
	l.GET("/:loan_id/investments/:investor", r.Loans.Investment)
	l.GET("/:loan_id/collateral", r.Loans.Collateral)
	l.POST("/:loan_id/investments", r.Loans.Invest, mut...)
	l.POST("/:loan_id/repay", r.Loans.Repay, mut...)
	l.POST("/:loan_id/default", r.Loans.Default, mut...)
}
