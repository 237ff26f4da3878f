package checkout

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/atithi-pms/atithi/internal/billing"
	"github.com/atithi-pms/atithi/internal/platform/httpx"
	"github.com/atithi-pms/atithi/internal/reservations"
)

type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/finalize", h.Finalize)
	r.Get("/booking/{bookingID}", h.ByBooking)
}

// Finalize completes a guest checkout and returns the invoice summary.
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	var in FinalizeInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	success, err := h.service.Finalize(r.Context(), in)
	if err != nil {
		h.logger.Error("finalize checkout",
			slog.String("room", in.RoomNumber), slog.Any("error", err))
		httpx.RespondError(w, mapError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, success)
}

// ByBooking returns the persisted checkout snapshot for a booking.
func (h *Handler) ByBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "bookingID must be an integer")
		return
	}
	c, err := h.service.ByBooking(r.Context(), bookingID)
	if err != nil {
		httpx.RespondError(w, mapError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, reservations.ErrRoomNotFound),
		errors.Is(err, reservations.ErrNoActiveBooking),
		errors.Is(err, ErrCheckoutNotFound):
		return errors.Join(httpx.ErrNotFound, err)
	case errors.Is(err, reservations.ErrNoRoomsLinked),
		errors.Is(err, billing.ErrInvalidBookingState):
		return errors.Join(httpx.ErrInvalidState, err)
	case errors.Is(err, ErrConcurrentFinalize):
		return errors.Join(httpx.ErrConflict, err)
	case errors.Is(err, ErrPaymentMismatch):
		return errors.Join(httpx.ErrValidation, err)
	default:
		return err
	}
}
