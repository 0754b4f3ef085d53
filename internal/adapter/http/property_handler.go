package http

import (
	"net/http"

	"tokenestate-backend/internal/adapter/middleware"
	"tokenestate-backend/internal/usecase/ledger"
	"tokenestate-backend/internal/usecase/registry"
	"tokenestate-backend/pkg/units"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type PropertyHandler struct {
	registry *registry.Usecase
	ledger   *ledger.Usecase
}

func NewPropertyHandler(r *registry.Usecase, l *ledger.Usecase) *PropertyHandler {
	return &PropertyHandler{registry: r, ledger: l}
}

type registerPropertyReq struct {
	Builder     string          `json:"builder" validate:"required,principal"`
	Name        string          `json:"name" validate:"max=128"`
	Wanted      decimal.Decimal `json:"wanted" validate:"amount"`
	Have        decimal.Decimal `json:"have" validate:"amount"`
	TotalSupply decimal.Decimal `json:"total_supply" validate:"amount"`
	BuilderName string          `json:"builder_name" validate:"max=128"`
	ExternalRef string          `json:"external_ref" validate:"max=256"`
	Ticker      string          `json:"ticker" validate:"max=16"`
}

func (h *PropertyHandler) Register(c echo.Context) error {
	var req registerPropertyReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.registry.Register(c.Request().Context(), registry.RegisterInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *PropertyHandler) Get(c echo.Context) error {
	id, ok := idParam(c, "property_id")
	if !ok {
		return badParam(c, "property_id")
	}
	dto, err := h.registry.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PropertyHandler) Quote(c echo.Context) error {
	id, ok := idParam(c, "property_id")
	if !ok {
		return badParam(c, "property_id")
	}
	dto, err := h.registry.Quote(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Units converts ?investment= into the property units it buys at the
// current valuation.
func (h *PropertyHandler) Units(c echo.Context) error {
	id, ok := idParam(c, "property_id")
	if !ok {
		return badParam(c, "property_id")
	}
	investment, ok := units.Parse(c.QueryParam("investment"))
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid query parameter",
			Details: []FieldError{{Field: "investment", Message: "must be an integer amount"}},
		})
	}
	out, err := h.registry.UnitsFor(c.Request().Context(), id, investment)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"property_id": id,
		"investment":  investment,
		"units":       out,
	})
}

func (h *PropertyHandler) BalanceOf(c echo.Context) error {
	id, ok := idParam(c, "property_id")
	if !ok {
		return badParam(c, "property_id")
	}
	holder := c.Param("holder")
	if !middleware.ValidPrincipal(holder) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid path parameter",
			Details: []FieldError{{Field: "holder", Message: "must be a valid account name"}},
		})
	}
	amount, err := h.ledger.BalanceOf(c.Request().Context(), holder, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ledger.BalanceDTO{Holder: holder, PropertyID: id, Amount: amount})
}

func (h *PropertyHandler) Holders(c echo.Context) error {
	id, ok := idParam(c, "property_id")
	if !ok {
		return badParam(c, "property_id")
	}
	list, err := h.ledger.Holders(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"property_id": id, "holders": list})
}
