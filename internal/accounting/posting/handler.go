package posting

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atithi-pms/atithi/internal/accounting/journals"
	"github.com/atithi-pms/atithi/internal/accounting/shared"
	"github.com/atithi-pms/atithi/internal/platform/httpx"
)

// Handler exposes the non-checkout posting builders. Checkout postings are
// driven by the finalizer, never over HTTP.
type Handler struct {
	poster   *Poster
	logger   *slog.Logger
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, poster *Poster) *Handler {
	return &Handler{logger: logger, poster: poster, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/purchase", h.Purchase)
	r.Post("/consumption", h.Consumption)
	r.Post("/expense", h.Expense)
	r.Post("/rcm", h.RCM)
	r.Post("/food-order", h.FoodOrder)
	r.Post("/service", h.Service)
}

type purchaseRequest struct {
	PurchaseID   int64     `json:"purchase_id" validate:"required,gt=0"`
	Date         time.Time `json:"date" validate:"required"`
	TaxableValue float64   `json:"taxable_value" validate:"required,gt=0"`
	CGST         float64   `json:"cgst" validate:"gte=0"`
	SGST         float64   `json:"sgst" validate:"gte=0"`
	IGST         float64   `json:"igst" validate:"gte=0"`
	PaidInCash   bool      `json:"paid_in_cash"`
	Description  string    `json:"description"`
}

func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.poster.PostPurchase(r.Context(), PurchaseEvent{
		PurchaseID:   req.PurchaseID,
		Date:         req.Date,
		TaxableValue: req.TaxableValue,
		CGST:         req.CGST,
		SGST:         req.SGST,
		IGST:         req.IGST,
		PaidInCash:   req.PaidInCash,
		Description:  req.Description,
	})
	h.respond(w, "purchase", entry, err)
}

type consumptionRequest struct {
	ReferenceID int64     `json:"reference_id" validate:"required,gt=0"`
	Date        time.Time `json:"date" validate:"required"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	Description string    `json:"description"`
}

func (h *Handler) Consumption(w http.ResponseWriter, r *http.Request) {
	var req consumptionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.poster.PostConsumption(r.Context(), ConsumptionEvent{
		ReferenceID: req.ReferenceID,
		Date:        req.Date,
		Amount:      req.Amount,
		Description: req.Description,
	})
	h.respond(w, "consumption", entry, err)
}

type expenseRequest struct {
	ExpenseID     int64     `json:"expense_id" validate:"required,gt=0"`
	Date          time.Time `json:"date" validate:"required"`
	LedgerName    string    `json:"ledger_name" validate:"required"`
	Amount        float64   `json:"amount" validate:"required,gt=0"`
	PaymentMethod string    `json:"payment_method" validate:"required,oneof=cash card upi bank"`
	Description   string    `json:"description"`
}

func (h *Handler) Expense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.poster.PostExpense(r.Context(), ExpenseEvent{
		ExpenseID:     req.ExpenseID,
		Date:          req.Date,
		LedgerName:    req.LedgerName,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
	})
	h.respond(w, "expense", entry, err)
}

type rcmRequest struct {
	ReferenceID  int64     `json:"reference_id" validate:"required,gt=0"`
	Date         time.Time `json:"date" validate:"required"`
	TaxableValue float64   `json:"taxable_value" validate:"required,gt=0"`
	CGST         float64   `json:"cgst" validate:"gte=0"`
	SGST         float64   `json:"sgst" validate:"gte=0"`
	IGST         float64   `json:"igst" validate:"gte=0"`
	Description  string    `json:"description"`
}

func (h *Handler) RCM(w http.ResponseWriter, r *http.Request) {
	var req rcmRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.poster.PostRCM(r.Context(), RCMEvent{
		ReferenceID:  req.ReferenceID,
		Date:         req.Date,
		TaxableValue: req.TaxableValue,
		CGST:         req.CGST,
		SGST:         req.SGST,
		IGST:         req.IGST,
		Description:  req.Description,
	})
	h.respond(w, "rcm", entry, err)
}

type revenueLineRequest struct {
	ReferenceID   int64     `json:"reference_id" validate:"required,gt=0"`
	Date          time.Time `json:"date" validate:"required"`
	Amount        float64   `json:"amount" validate:"required,gt=0"`
	CGST          float64   `json:"cgst" validate:"gte=0"`
	SGST          float64   `json:"sgst" validate:"gte=0"`
	IGST          float64   `json:"igst" validate:"gte=0"`
	PaymentMethod string    `json:"payment_method" validate:"required,oneof=cash card upi bank"`
	Description   string    `json:"description"`
}

func (h *Handler) FoodOrder(w http.ResponseWriter, r *http.Request) {
	h.revenueLine(w, r, "food order", h.poster.PostFoodOrder)
}

func (h *Handler) Service(w http.ResponseWriter, r *http.Request) {
	h.revenueLine(w, r, "service", h.poster.PostService)
}

func (h *Handler) revenueLine(w http.ResponseWriter, r *http.Request, kind string, post func(ctx context.Context, event RevenueLineEvent) (*journals.Entry, error)) {
	var req revenueLineRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := post(r.Context(), RevenueLineEvent{
		ReferenceID:   req.ReferenceID,
		Date:          req.Date,
		Amount:        req.Amount,
		CGST:          req.CGST,
		SGST:          req.SGST,
		IGST:          req.IGST,
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
	})
	h.respond(w, kind, entry, err)
}

func (h *Handler) respond(w http.ResponseWriter, kind string, entry *journals.Entry, err error) {
	if err != nil {
		h.logger.Error("post "+kind, slog.Any("error", err))
		httpx.RespondError(w, mapError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, shared.ErrMissingLedgerConfiguration),
		errors.Is(err, shared.ErrLedgerNotFound):
		return errors.Join(httpx.ErrInvalidState, err)
	case errors.Is(err, shared.ErrReferenceAlreadyPosted):
		return errors.Join(httpx.ErrConflict, err)
	case errors.Is(err, shared.ErrUnbalanced),
		errors.Is(err, shared.ErrTooFewLines):
		return errors.Join(httpx.ErrValidation, err)
	default:
		return err
	}
}
