package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"tokenestate-backend/internal/domain/auth"
	"tokenestate-backend/internal/logger"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// lifetime of a pending claim whose handler never finished
	pendingTTL = 60 * time.Second
	// accepted distance between Ax-Request-At and the server clock
	maxClockSkew = 10 * time.Minute
	storeTimeout = 2 * time.Second
)

// requestMeta is what a mutating request must carry to be replay-safe.
type requestMeta struct {
	principal string
	requestID string
	sentAt    time.Time
}

func readMeta(req *http.Request, now time.Time) (requestMeta, error) {
	var m requestMeta
	m.requestID = strings.TrimSpace(req.Header.Get(HeaderRequestID))
	if m.requestID == "" {
		return m, errors.New("missing " + HeaderRequestID)
	}
	if !validReqID(m.requestID) {
		return m, errors.New("invalid " + HeaderRequestID + " format")
	}

	at, err := parseRequestAt(req.Header.Get(HeaderRequestAt))
	if err != nil {
		return m, err
	}
	if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return m, errors.New(HeaderRequestAt + " too skewed")
	}
	m.sentAt = at

	p, ok := auth.PrincipalFrom(req.Context())
	if !ok {
		return m, errors.New("missing " + HeaderPrincipal)
	}
	m.principal = p
	return m, nil
}

// capture tees the response so it can be stored for replay.
type capture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *capture) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *capture) WriteHeader(status int) {
	c.status = status
	c.ResponseWriter.WriteHeader(status)
}

// Idempotency replays the stored response of a mutating request retried with
// the same Ax-Request-Id. Keys are scoped by method, route and principal, so
// Principal must run first. Server errors are not stored.
func Idempotency(rdb redis.Cmdable, ttl time.Duration) echo.MiddlewareFunc {
	store := replayStore{rdb: rdb, ttl: ttl}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			meta, err := readMeta(req, time.Now().UTC())
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			hash := sha256Hex(body)
			key := replayKey(req.Method, c.Path(), meta.principal, meta.requestID)
			log := logger.FromContext(req.Context()).With(zap.String("idempotency_key", key))

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()

			owned, err := store.claim(ctx, key, replayRecord{
				Pending:   true,
				BodyHash:  hash,
				RequestID: meta.requestID,
				SentAtMS:  meta.sentAt.UnixMilli(),
				StoredAt:  time.Now().UTC(),
			})
			if err != nil {
				log.Warn("idempotency store unavailable", zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !owned {
				prev, err := store.load(ctx, key)
				if err != nil {
					log.Warn("idempotency record unreadable", zap.Error(err))
				}
				switch {
				case prev.BodyHash != "" && prev.BodyHash != hash:
					return c.JSON(http.StatusConflict, map[string]string{"error": HeaderRequestID + " reused with different body"})
				case prev.complete():
					return c.Blob(prev.Status, echo.MIMEApplicationJSON, prev.Response)
				default:
					return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
				}
			}

			w := &capture{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = w
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may already be done; storing must not depend on it
			bg, cancelBg := context.WithTimeout(context.Background(), storeTimeout)
			defer cancelBg()
			if w.status >= http.StatusInternalServerError {
				if err := store.release(bg, key); err != nil {
					log.Warn("idempotency claim not released", zap.Error(err))
				}
				return nil
			}
			if err := store.finish(bg, key, replayRecord{
				Status:    w.status,
				Response:  w.body.Bytes(),
				BodyHash:  hash,
				RequestID: meta.requestID,
				SentAtMS:  meta.sentAt.UnixMilli(),
				StoredAt:  time.Now().UTC(),
			}); err != nil {
				log.Warn("idempotency result not stored", zap.Error(err))
			}
			return nil
		}
	}
}
