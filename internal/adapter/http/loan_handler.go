package http

import (
	"net/http"

	"tokenestate-backend/internal/adapter/middleware"
	"tokenestate-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createLoanReq struct {
	Builder          string           `json:"builder" validate:"required,principal"`
	PropertyID       uint64           `json:"property_id" validate:"required"`
	DurationDays     uint32           `json:"duration_days"`
	APYBps           uint32           `json:"apy_bps"`
	RequestedAmount  *decimal.Decimal `json:"requested_amount,omitempty" validate:"omitempty,amount"`
	CollateralAmount *decimal.Decimal `json:"collateral_amount,omitempty" validate:"omitempty,amount"`
}

type investReq struct {
	Investor string          `json:"investor" validate:"required,principal"`
	Amount   decimal.Decimal `json:"amount" validate:"amount"`
}

type repayReq struct {
	Builder string `json:"builder" validate:"required,principal"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.CreateBorrowRequest(c.Request().Context(), loan.CreateBorrowInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, ok := idParam(c, "loan_id")
	if !ok {
		return badParam(c, "loan_id")
	}
	dto, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Investors(c echo.Context) error {
	id, ok := idParam(c, "loan_id")
	if !ok {
		return badParam(c, "loan_id")
	}
	list, err := h.uc.Investors(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_id": id, "investors": list})
}

func (h *LoanHandler) Investment(c echo.Context) error {
	id, ok := idParam(c, "loan_id")
	if !ok {
		return badParam(c, "loan_id")
	}
	investor := c.Param("investor")
	if !middleware.ValidPrincipal(investor) {
		return badParam(c, "investor")
	}
	dto, err := h.uc.Investment(c.Request().Context(), id, investor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Collateral(c echo.Context) error {
	id, ok := idParam(c, "loan_id")
	if !ok {
		return badParam(c, "loan_id")
	}
	dto, err := h.uc.Collateral(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Invest(c echo.Context) error {
	id, ok := idParam(c, "loan_id")
	if !ok {
		return badParam(c, "loan_id")
	}
	var req investReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.uc.Invest(c.Request().Context(), loan.InvestInput{Investor: req.Investor, LoanID: id, Amount: req.Amount})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *LoanHandler) Repay(c echo.Context) error {
	id, ok := idParam(c, "loan_id")
	if !ok {
		return badParam(c, "loan_id")
	}
	var req repayReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Repay(c.Request().Context(), req.Builder, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Default is permissionless; any caller may trigger it once the loan matured.
func (h *LoanHandler) Default(c echo.Context) error {
	id, ok := idParam(c, "loan_id")
	if !ok {
		return badParam(c, "loan_id")
	}
	res, err := h.uc.ExecuteDefault(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
