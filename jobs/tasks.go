package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault carries housekeeping dispatches.
	QueueDefault = "default"
	// QueueLedger carries bookkeeping recovery and integrity tasks.
	QueueLedger = "ledger"
	// TaskCleaningRequest asks housekeeping to turn a room around after
	// checkout.
	TaskCleaningRequest = "housekeeping:cleaning"
	// TaskRefillRequest asks housekeeping to restock a room's consumables.
	TaskRefillRequest = "housekeeping:refill"
)

// RoomTaskPayload identifies the room a housekeeping task targets.
type RoomTaskPayload struct {
	RoomID int64 `json:"room_id"`
}

// NewCleaningRequestTask constructs an Asynq task for a cleaning request.
func NewCleaningRequestTask(roomID int64) (*asynq.Task, error) {
	data, err := json.Marshal(RoomTaskPayload{RoomID: roomID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCleaningRequest, data, asynq.Queue(QueueDefault)), nil
}

// NewRefillRequestTask constructs an Asynq task for a refill request.
func NewRefillRequestTask(roomID int64) (*asynq.Task, error) {
	data, err := json.Marshal(RoomTaskPayload{RoomID: roomID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRefillRequest, data, asynq.Queue(QueueDefault)), nil
}

// HousekeepingPort creates service requests in the housekeeping module.
type HousekeepingPort interface {
	CreateCleaningRequest(ctx context.Context, roomID int64) error
	CreateRefillRequest(ctx context.Context, roomID int64) error
}

// NewCleaningHandler processes TaskCleaningRequest tasks.
func NewCleaningHandler(port HousekeepingPort, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload RoomTaskPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if err := port.CreateCleaningRequest(ctx, payload.RoomID); err != nil {
			return err
		}
		if logger != nil {
			logger.Info("cleaning request created", slog.Int64("room_id", payload.RoomID))
		}
		return nil
	}
}

// NewRefillHandler processes TaskRefillRequest tasks.
func NewRefillHandler(port HousekeepingPort, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload RoomTaskPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if err := port.CreateRefillRequest(ctx, payload.RoomID); err != nil {
			return err
		}
		if logger != nil {
			logger.Info("refill request created", slog.Int64("room_id", payload.RoomID))
		}
		return nil
	}
}
