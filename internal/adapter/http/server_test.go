package http

import (
	"bytes"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"tokenestate-backend/internal/adapter/middleware"
	"tokenestate-backend/internal/adapter/repository/mysql"
	"tokenestate-backend/internal/domain/auth"
	"tokenestate-backend/internal/testutil/eventmock"
	"tokenestate-backend/internal/testutil/testdb"
	"tokenestate-backend/internal/usecase/escrow"
	"tokenestate-backend/internal/usecase/ledger"
	"tokenestate-backend/internal/usecase/loan"
	"tokenestate-backend/internal/usecase/registry"
	"tokenestate-backend/pkg/clock"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const (
	admin   = "GADMIN"
	builder = "GBUILDER"
	start   = int64(1_700_000_000)
)

type server struct {
	e     *echo.Echo
	clock *clock.Fixed
	pub   *eventmock.Publisher
}

func newServer(t *testing.T, rdb redis.Cmdable) *server {
	t.Helper()
	db := testdb.Open(t)
	tx := mysql.NewGormUoW(db)
	fc := &clock.Fixed{}
	fc.Set(start)
	pub := eventmock.New()
	authz := auth.ContextAuthorizer{}
	eng := ledger.NewEngine(ledger.Config{FeeBps: 250, FeeWallet: "GFEE", EscrowAccount: "GESCROW"})

	ledgerUC := ledger.NewUsecase(tx, authz, eng, pub)
	registryUC := registry.NewUsecase(tx, authz, auth.NewRegistrationPolicy(admin, []string{builder}), eng, pub)
	loanUC := loan.NewUsecase(tx, authz, escrow.New(eng, fc), fc, pub, loan.Config{})

	e := echo.New()
	e.HideBanner = true
	Router{
		Health:         NewHandler(fc, nil),
		Properties:     NewPropertyHandler(registryUC, ledgerUC),
		Transfers:      NewTransferHandler(ledgerUC),
		Loans:          NewLoanHandler(loanUC),
		Redis:          rdb,
		IdempotencyTTL: 0,
	}.Mount(e)
	return &server{e: e, clock: fc, pub: pub}
}

func mustJSON(v any) io.Reader {
	if v == nil {
		return nil
	}
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

// do sends a request as principal; an empty principal sends no header.
func (s *server) do(t *testing.T, method, path, principal string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if principal != "" {
		req.Header.Set(middleware.HeaderPrincipal, principal)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// seed registers a property (wanted 300, have 0, supply 31) owned by builder.
func (s *server) seed(t *testing.T) {
	t.Helper()
	rec := s.do(t, stdhttp.MethodPost, "/properties", builder, map[string]any{
		"builder": builder, "name": "Tower", "wanted": "300", "have": "0", "total_supply": "31", "ticker": "TWR",
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
}
