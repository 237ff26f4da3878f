package billing

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
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
	r.Get("/preview", h.Preview)
}

type previewRequest struct {
	RoomNumber string `validate:"required"`
	Scope      string `validate:"omitempty,oneof=room booking"`
}

// Preview returns the bill for a room or its whole booking without
// finalizing anything.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	req := previewRequest{
		RoomNumber: r.URL.Query().Get("room_number"),
		Scope:      r.URL.Query().Get("scope"),
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	scope := ScopeRoom
	if req.Scope == string(ScopeBooking) {
		scope = ScopeBooking
	}

	summary, err := h.service.BuildBill(r.Context(), req.RoomNumber, scope)
	if err != nil {
		h.logger.Error("build bill", slog.String("room", req.RoomNumber), slog.Any("error", err))
		httpx.RespondError(w, mapError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, reservations.ErrRoomNotFound),
		errors.Is(err, reservations.ErrNoActiveBooking):
		return errors.Join(httpx.ErrNotFound, err)
	case errors.Is(err, reservations.ErrNoRoomsLinked),
		errors.Is(err, ErrInvalidBookingState):
		return errors.Join(httpx.ErrInvalidState, err)
	default:
		return err
	}
}
