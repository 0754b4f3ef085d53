package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"tokenestate-backend/internal/domain/auth"
	"tokenestate-backend/internal/logger"

	"github.com/labstack/echo/v4"
)

const (
	HeaderPrincipal = "Ax-Principal"
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
)

var rePrincipal = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{0,63}$`)

// ValidPrincipal reports whether p is a well-formed account name.
func ValidPrincipal(p string) bool { return rePrincipal.MatchString(p) }

// Principal puts the caller named by Ax-Principal on the request context.
// The header is expected to be set by the authenticating gateway. Requests
// without it proceed anonymously; every mutating operation then fails
// authorization.
func Principal() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := req.Context()

			if rid := strings.TrimSpace(req.Header.Get(HeaderRequestID)); rid != "" {
				ctx = logger.WithRequestID(ctx, rid)
			}
			if p := strings.TrimSpace(req.Header.Get(HeaderPrincipal)); p != "" {
				if !ValidPrincipal(p) {
					return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid Ax-Principal"})
				}
				ctx = auth.WithPrincipal(ctx, p)
			}

			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
