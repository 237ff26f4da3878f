package journals

import (
	"errors"

	"github.com/go-chi/chi/v5"
	"github.com/atithi-pms/atithi/internal/accounting/shared"
	"github.com/atithi-pms/atithi/internal/platform/httpx"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/void", h.Void)
	r.Post("/{id}/reverse", h.Reverse)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, shared.ErrEntryNotFound):
		return errors.Join(httpx.ErrNotFound, err)
	case errors.Is(err, shared.ErrInvalidStatus):
		return errors.Join(httpx.ErrInvalidState, err)
	case errors.Is(err, shared.ErrUnbalanced), errors.Is(err, shared.ErrTooFewLines):
		return errors.Join(httpx.ErrValidation, err)
	case errors.Is(err, shared.ErrReferenceAlreadyPosted):
		return errors.Join(httpx.ErrConflict, err)
	default:
		return err
	}
}
