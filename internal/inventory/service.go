package inventory

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrItemNotFound indicates an unknown consumable SKU.
var ErrItemNotFound = errors.New("inventory: item not found")

// Deduction is one consumed line applied to room stock at checkout.
type Deduction struct {
	ItemID   int64
	Quantity float64
}

// RepositoryPort defines data access for consumables.
type RepositoryPort interface {
	ItemByID(ctx context.Context, itemID int64) (*Item, error)
	RoomStock(ctx context.Context, roomID, itemID int64) (float64, error)
	// CompletedVerificationForRoom returns the latest inspection completed at
	// or after since, or nil when none exists. Earlier inspections belong to
	// a prior stay.
	CompletedVerificationForRoom(ctx context.Context, roomID int64, since time.Time) (*Verification, error)
	RecordDeduction(ctx context.Context, roomID int64, deductions []Deduction, checkoutID, userID int64, at time.Time) error
}

// Service is the stable contract the checkout engine consumes.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// CurrentStock reports the quantity of an item stocked in a room.
func (s *Service) CurrentStock(ctx context.Context, roomID, itemID int64) (float64, error) {
	return s.repo.RoomStock(ctx, roomID, itemID)
}

// SellingPrice resolves the chargeable unit price for an item.
func (s *Service) SellingPrice(ctx context.Context, itemID int64) (float64, error) {
	item, err := s.repo.ItemByID(ctx, itemID)
	if err != nil {
		return 0, err
	}
	return item.SellingPrice, nil
}

// CompletedVerification exposes the latest inspection of the current stay
// for billing.
func (s *Service) CompletedVerification(ctx context.Context, roomID int64, since time.Time) (*Verification, error) {
	return s.repo.CompletedVerificationForRoom(ctx, roomID, since)
}

// DeductConsumables writes the consumption movement for a checkout.
func (s *Service) DeductConsumables(ctx context.Context, roomID int64, items []Deduction, checkoutID, userID int64) error {
	if len(items) == 0 {
		return nil
	}
	if err := s.repo.RecordDeduction(ctx, roomID, items, checkoutID, userID, s.now()); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Info("consumables deducted",
			slog.Int64("room_id", roomID),
			slog.Int64("checkout_id", checkoutID),
			slog.Int("items", len(items)))
	}
	return nil
}
