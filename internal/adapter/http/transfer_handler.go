package http

import (
	"net/http"

	"tokenestate-backend/internal/usecase/ledger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type TransferHandler struct{ uc *ledger.Usecase }

func NewTransferHandler(uc *ledger.Usecase) *TransferHandler { return &TransferHandler{uc: uc} }

type transferReq struct {
	From       string          `json:"from" validate:"required,principal"`
	To         string          `json:"to" validate:"required,principal"`
	PropertyID uint64          `json:"property_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"amount"`
}

func (h *TransferHandler) Transfer(c echo.Context) error {
	var req transferReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	receipt, err := h.uc.Transfer(c.Request().Context(), ledger.TransferInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, receipt)
}
