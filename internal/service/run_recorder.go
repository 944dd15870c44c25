package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pennsieve/account-provisioner/internal/logging"
	"github.com/pennsieve/account-provisioner/internal/models"
	"github.com/pennsieve/account-provisioner/internal/store_dynamodb"
)

// Recorder keeps the run ledger up to date. Implementations never fail the flow
// they observe.
type Recorder interface {
	Started(ctx context.Context, run models.Run) models.Run
	Observed(ctx context.Context, runId string, status string, attempts int)
}

// NopRecorder assigns run ids but persists nothing.
type NopRecorder struct{}

func (NopRecorder) Started(_ context.Context, run models.Run) models.Run {
	return stamp(run, time.Now())
}

func (NopRecorder) Observed(context.Context, string, string, int) {}

// RunRecorder writes runs to a RunStore, logging and swallowing store errors.
type RunRecorder struct {
	Store  store_dynamodb.RunStore
	Logger *slog.Logger
	now    func() time.Time
}

func NewRunRecorder(store store_dynamodb.RunStore) *RunRecorder {
	return &RunRecorder{Store: store, Logger: logging.Default, now: time.Now}
}

func (r *RunRecorder) Started(ctx context.Context, run models.Run) models.Run {
	run = stamp(run, r.now())
	if err := r.Store.Insert(ctx, run); err != nil {
		r.Logger.Error("error recording run",
			slog.String("runId", run.RunId),
			slog.String("accountId", run.AccountId),
			slog.String("error", err.Error()))
	}
	return run
}

func (r *RunRecorder) Observed(ctx context.Context, runId string, status string, attempts int) {
	if err := r.Store.UpdateStatus(ctx, runId, status, attempts); err != nil {
		r.Logger.Error("error updating run status",
			slog.String("runId", runId),
			slog.String("status", status),
			slog.String("error", err.Error()))
	}
}

func stamp(run models.Run, now time.Time) models.Run {
	if run.RunId == "" {
		run.RunId = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = models.RunStatusSubmitted
	}
	run.CreatedAt = now.Unix()
	run.UpdatedAt = run.CreatedAt
	return run
}

// StrictRecorder writes runs like RunRecorder but keeps the first store error
// for the caller. Used where an untracked run cannot be polled again.
type StrictRecorder struct {
	Store store_dynamodb.RunStore
	now   func() time.Time
	err   error
}

func NewStrictRecorder(store store_dynamodb.RunStore) *StrictRecorder {
	return &StrictRecorder{Store: store, now: time.Now}
}

func (r *StrictRecorder) Started(ctx context.Context, run models.Run) models.Run {
	run = stamp(run, r.now())
	if err := r.Store.Insert(ctx, run); err != nil && r.err == nil {
		r.err = fmt.Errorf("error recording run %s: %w", run.RunId, err)
	}
	return run
}

func (r *StrictRecorder) Observed(ctx context.Context, runId string, status string, attempts int) {
	if err := r.Store.UpdateStatus(ctx, runId, status, attempts); err != nil && r.err == nil {
		r.err = fmt.Errorf("error updating run %s: %w", runId, err)
	}
}

// Err returns the first store error seen, if any.
func (r *StrictRecorder) Err() error {
	return r.err
}
