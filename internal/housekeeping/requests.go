// Package housekeeping persists post-checkout service requests consumed by
// the front-desk staff views.
package housekeeping

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Request types written to the service_requests queue.
const (
	RequestCleaning = "CLEANING"
	RequestRefill   = "REFILL"
)

// Store writes housekeeping requests.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

// CreateCleaningRequest queues a room turnaround. Duplicate pending requests
// for the same room collapse into one.
func (s *Store) CreateCleaningRequest(ctx context.Context, roomID int64) error {
	return s.insert(ctx, roomID, RequestCleaning)
}

// CreateRefillRequest queues a consumable restock.
func (s *Store) CreateRefillRequest(ctx context.Context, roomID int64) error {
	return s.insert(ctx, roomID, RequestRefill)
}

func (s *Store) insert(ctx context.Context, roomID int64, kind string) error {
	_, err := s.db.Exec(ctx, `INSERT INTO service_requests (room_id, kind, status)
VALUES ($1, $2, 'PENDING')
ON CONFLICT (room_id, kind) WHERE status = 'PENDING' DO NOTHING`, roomID, kind)
	return err
}
