package http

import (
	"net/http"

	"tokenestate-backend/internal/domain/apperr"
	"tokenestate-backend/internal/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// writeError renders a usecase error. Domain errors carry their stable code and
// kind; anything else is an infrastructure failure and is logged, not echoed.
func writeError(c echo.Context, err error) error {
	k := apperr.KindOf(err)
	if k == apperr.KindUnknown {
		logger.ErrorCtx(c.Request().Context(), err,
			zap.String("method", c.Request().Method),
			zap.String("route", c.Path()),
		)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(k.HTTPStatus(), ErrorResponse{Error: err.Error(), Code: k.Code(), Kind: k.String()})
}
