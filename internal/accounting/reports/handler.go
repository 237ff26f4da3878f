package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/atithi-pms/atithi/internal/platform/httpx"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.TrialBalance)
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	var from, to *time.Time
	if t, ok := parseDate(r.URL.Query().Get("from")); ok {
		from = &t
	}
	if t, ok := parseDate(r.URL.Query().Get("to")); ok {
		to = &t
	}

	var tb TrialBalance
	var err error
	if r.URL.Query().Get("mode") == "automatic" {
		tb, err = h.service.AutomaticTrialBalance(r.Context(), from, to)
	} else {
		tb, err = h.service.TrialBalance(r.Context(), from, to)
	}
	if err != nil {
		h.logger.Error("trial balance", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
