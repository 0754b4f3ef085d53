package http

import (
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tokenestate-backend/internal/adapter/middleware"
	"tokenestate-backend/internal/domain/event"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *server) createLoan(t *testing.T) {
	t.Helper()
	rec := s.do(t, stdhttp.MethodPost, "/loans", builder, map[string]any{
		"builder": builder, "property_id": 1, "duration_days": 30, "apy_bps": 1000,
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
}

func (s *server) invest(t *testing.T, investor, amount string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, stdhttp.MethodPost, "/loans/1/investments", investor, map[string]any{
		"investor": investor, "amount": amount,
	})
}

func TestCreateLoan(t *testing.T) {
	s := newServer(t, nil)
	s.seed(t)

	rec := s.do(t, stdhttp.MethodPost, "/loans", builder, map[string]any{
		"builder": builder, "property_id": 1, "duration_days": 30, "apy_bps": 1000,
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
	got := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, got["id"])
	assert.Equal(t, "300", got["requested_amount"])
	assert.Equal(t, "330", got["repayment_amount"])
	assert.Equal(t, "open", got["status"])
	assert.EqualValues(t, start+30*86_400, got["maturity_at"])

	rec = s.do(t, stdhttp.MethodGet, "/loans/1/collateral", "", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	c := decode[map[string]any](t, rec)
	assert.Equal(t, "31", c["amount"])
	assert.Equal(t, false, c["locked"])
}

func TestCreateLoan_Errors(t *testing.T) {
	s := newServer(t, nil)
	s.seed(t)

	tests := []struct {
		name      string
		principal string
		body      map[string]any
		status    int
		code      int
	}{
		{"someone else", "GMALLORY", map[string]any{"builder": builder, "property_id": 1, "duration_days": 30}, stdhttp.StatusForbidden, 1001},
		{"zero duration", builder, map[string]any{"builder": builder, "property_id": 1, "duration_days": 0}, stdhttp.StatusUnprocessableEntity, 2004},
		{"too long", builder, map[string]any{"builder": builder, "property_id": 1, "duration_days": 366}, stdhttp.StatusUnprocessableEntity, 2004},
		{"collateral over balance", builder, map[string]any{"builder": builder, "property_id": 1, "duration_days": 30, "collateral_amount": "32"}, stdhttp.StatusUnprocessableEntity, 2008},
		{"unknown property", builder, map[string]any{"builder": builder, "property_id": 7, "duration_days": 30}, stdhttp.StatusNotFound, 1004},
		{"missing property", builder, map[string]any{"builder": builder, "duration_days": 30}, stdhttp.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, stdhttp.MethodPost, "/loans", tt.principal, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.code != 0 {
				assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Code)
			}
		})
	}

	rec := s.do(t, stdhttp.MethodGet, "/loans/1", "", nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
}

func TestLoanLifecycle_Repay(t *testing.T) {
	s := newServer(t, nil)
	s.seed(t)
	s.createLoan(t)

	rec := s.invest(t, "GA", "100")
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "open", decode[map[string]any](t, rec)["status"])

	rec = s.invest(t, "GB", "201")
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)

	rec = s.invest(t, "GB", "200")
	require.Equal(t, stdhttp.StatusCreated, rec.Code)
	res := decode[map[string]any](t, rec)
	assert.Equal(t, "funded", res["status"])
	assert.Equal(t, "300", res["total_invested"])

	rec = s.do(t, stdhttp.MethodGet, "/loans/1/investments/GB", "", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, "200", decode[map[string]any](t, rec)["amount"])

	rec = s.do(t, stdhttp.MethodGet, "/loans/1/investors", "", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	investors := decode[struct {
		Investors []map[string]any `json:"investors"`
	}](t, rec).Investors
	require.Len(t, investors, 2)
	assert.Equal(t, "GA", investors[0]["investor"])

	rec = s.do(t, stdhttp.MethodPost, "/loans/1/repay", "GA", map[string]any{"builder": builder})
	assert.Equal(t, stdhttp.StatusForbidden, rec.Code)

	s.clock.Set(start + 31*86_400)
	rec = s.do(t, stdhttp.MethodPost, "/loans/1/repay", builder, map[string]any{"builder": builder})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "repaid", decode[map[string]any](t, rec)["status"])

	rec = s.do(t, stdhttp.MethodGet, "/properties/1/balances/"+builder, "", nil)
	assert.Equal(t, "31", decode[map[string]any](t, rec)["amount"])

	rec = s.do(t, stdhttp.MethodPost, "/loans/1/default", "GA", nil)
	assert.Equal(t, stdhttp.StatusConflict, rec.Code)
	assert.Equal(t, "LoanNotActive", decode[ErrorResponse](t, rec).Kind)

	assert.Contains(t, s.pub.Topics(), event.TopicLoanRepaid)
}

func TestLoanLifecycle_Default(t *testing.T) {
	s := newServer(t, nil)
	s.seed(t)
	s.createLoan(t)
	require.Equal(t, stdhttp.StatusCreated, s.invest(t, "GA", "100").Code)
	require.Equal(t, stdhttp.StatusCreated, s.invest(t, "GB", "200").Code)

	rec := s.do(t, stdhttp.MethodPost, "/loans/1/default", "GKEEPER", nil)
	assert.Equal(t, stdhttp.StatusConflict, rec.Code)
	assert.Equal(t, 2011, decode[ErrorResponse](t, rec).Code)

	s.clock.Set(start + 30*86_400 + 1)
	rec = s.do(t, stdhttp.MethodPost, "/loans/1/default", "GKEEPER", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	res := decode[struct {
		Loan    map[string]any   `json:"loan"`
		Payouts []map[string]any `json:"payouts"`
	}](t, rec)
	assert.Equal(t, "defaulted", res.Loan["status"])
	require.Len(t, res.Payouts, 2)
	assert.Equal(t, "10", res.Payouts[0]["amount"])
	assert.Equal(t, "20", res.Payouts[1]["amount"])

	rec = s.do(t, stdhttp.MethodGet, "/properties/1/balances/GESCROW", "", nil)
	assert.Equal(t, "1", decode[map[string]any](t, rec)["amount"])
}

func TestLoanRoutes_Idempotent(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	s := newServer(t, rdb)

	send := func(principal string, path string, body any) *httptest.ResponseRecorder {
		req := httptest.NewRequest(stdhttp.MethodPost, path, mustJSON(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(middleware.HeaderPrincipal, principal)
		req.Header.Set(middleware.HeaderRequestID, "0123456789abcdef0123456789abcdef")
		req.Header.Set(middleware.HeaderRequestAt, time.Now().UTC().Format(time.RFC3339))
		rec := httptest.NewRecorder()
		s.e.ServeHTTP(rec, req)
		return rec
	}

	body := map[string]any{
		"builder": builder, "name": "Tower", "wanted": "300", "have": "0", "total_supply": "31",
	}
	first := send(builder, "/properties", body)
	require.Equal(t, stdhttp.StatusCreated, first.Code, first.Body.String())
	again := send(builder, "/properties", body)
	require.Equal(t, stdhttp.StatusCreated, again.Code)
	assert.JSONEq(t, first.Body.String(), again.Body.String())

	// the replay did not register a second property
	rec := s.do(t, stdhttp.MethodGet, "/properties/2", "", nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)

	// reads skip the idempotency headers
	rec = s.do(t, stdhttp.MethodGet, "/properties/1", "", nil)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
}
