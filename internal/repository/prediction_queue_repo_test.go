package repository

import (
	"context"
	"playstore-predictor/internal/dto"
	"playstore-predictor/pkg/common"
	"playstore-predictor/pkg/queue"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictionQueueRepository_RoundTripsInOrder(t *testing.T) {
	repo := NewPredictionQueueRepository(queue.NewMemory(4))
	ctx := context.Background()

	first := dto.QueueMessage{Action: common.ActionSavePrediction, Data: &dto.PredictionResult{PredictedInstalls: "~1"}}
	second := dto.QueueMessage{Action: "upload_raw"}
	require.NoError(t, repo.Enqueue(ctx, first))
	require.NoError(t, repo.Enqueue(ctx, second))

	got, err := repo.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, common.ActionSavePrediction, got.Action)
	require.NotNil(t, got.Data)
	assert.Equal(t, "~1", got.Data.PredictedInstalls)

	got, err = repo.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "upload_raw", got.Action)
	assert.Nil(t, got.Data)
}

func TestPredictionQueueRepository_DequeueHonoursContext(t *testing.T) {
	repo := NewPredictionQueueRepository(queue.NewMemory(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Dequeue(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestPredictionQueueRepository_MalformedBody(t *testing.T) {
	q := queue.NewMemory(1)
	repo := NewPredictionQueueRepository(q)
	require.NoError(t, q.Push(context.Background(), []byte("{")))

	_, err := repo.Dequeue(context.Background())

	assert.ErrorIs(t, err, ErrMalformedMessage)
}
