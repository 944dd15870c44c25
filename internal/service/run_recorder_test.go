package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pennsieve/account-provisioner/internal/logging"
	"github.com/pennsieve/account-provisioner/internal/mocks"
	"github.com/pennsieve/account-provisioner/internal/models"
)

func newTestRecorder(store *mocks.MockRunStore) *RunRecorder {
	r := NewRunRecorder(store)
	r.Logger = logging.NewLogger(io.Discard)
	r.now = func() time.Time { return time.Unix(1700000000, 0) }
	return r
}

func TestRunRecorderStartedAssignsIdAndInserts(t *testing.T) {
	store := new(mocks.MockRunStore)
	recorder := newTestRecorder(store)

	store.On("Insert", mock.Anything, mock.MatchedBy(func(run models.Run) bool {
		_, err := uuid.Parse(run.RunId)
		return err == nil && run.Status == models.RunStatusSubmitted && run.CreatedAt == 1700000000
	})).Return(nil)

	run := recorder.Started(context.Background(), models.Run{Kind: models.RunKindProvision, AccountId: "123456789012", Handle: "pp-1"})

	assert.NotEmpty(t, run.RunId)
	assert.Equal(t, int64(1700000000), run.UpdatedAt)
	store.AssertExpectations(t)
}

func TestRunRecorderSwallowsStoreErrors(t *testing.T) {
	store := new(mocks.MockRunStore)
	recorder := newTestRecorder(store)
	store.On("Insert", mock.Anything, mock.Anything).Return(errors.New("table missing"))
	store.On("UpdateStatus", mock.Anything, "run-1", "AVAILABLE", 2).Return(errors.New("throttled"))

	run := recorder.Started(context.Background(), models.Run{RunId: "run-1", Kind: models.RunKindEnroll})
	recorder.Observed(context.Background(), "run-1", "AVAILABLE", 2)

	assert.Equal(t, "run-1", run.RunId)
	store.AssertExpectations(t)
}

func TestRunRecorderPreservesExplicitStatus(t *testing.T) {
	store := new(mocks.MockRunStore)
	recorder := newTestRecorder(store)
	store.On("Insert", mock.Anything, mock.Anything).Return(nil)

	run := recorder.Started(context.Background(), models.Run{Status: "REJECTED"})

	assert.Equal(t, "REJECTED", run.Status)
}

func TestNopRecorder(t *testing.T) {
	run := NopRecorder{}.Started(context.Background(), models.Run{AccountId: "123456789012"})

	require.NotEmpty(t, run.RunId)
	assert.Equal(t, models.RunStatusSubmitted, run.Status)
	NopRecorder{}.Observed(context.Background(), run.RunId, "AVAILABLE", 1)
}

func TestStrictRecorderKeepsFirstStoreError(t *testing.T) {
	store := new(mocks.MockRunStore)
	recorder := NewStrictRecorder(store)
	insertErr := errors.New("throughput exceeded")
	store.On("Insert", mock.Anything, mock.Anything).Return(insertErr)
	store.On("UpdateStatus", mock.Anything, "run-1", "AVAILABLE", 1).Return(errors.New("throttled"))

	run := recorder.Started(context.Background(), models.Run{RunId: "run-1", Kind: models.RunKindProvision})
	recorder.Observed(context.Background(), "run-1", "AVAILABLE", 1)

	assert.Equal(t, "run-1", run.RunId)
	assert.ErrorIs(t, recorder.Err(), insertErr)
}

func TestStrictRecorderWithoutErrors(t *testing.T) {
	store := new(mocks.MockRunStore)
	recorder := NewStrictRecorder(store)
	store.On("Insert", mock.Anything, mock.Anything).Return(nil)

	recorder.Started(context.Background(), models.Run{Kind: models.RunKindEnroll})

	assert.NoError(t, recorder.Err())
	store.AssertExpectations(t)
}
