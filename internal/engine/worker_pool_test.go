package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritext/veritext/internal/models"
)

func TestWorkerPool_CheckJob(t *testing.T) {
	ctx := context.Background()
	pool := NewWorkerPool(ctx)
	defer pool.Close()

	assert.GreaterOrEqual(t, pool.Size(), 1)

	composer, _, _ := newTestComposer()
	resultChan := make(chan CheckResult, 1)
	err := pool.Submit(&CheckJob{
		Composer: composer,
		Submission: models.Submission{
			DocumentID: "pooled",
			Title:      "Pooled",
			Content:    "a document checked through the worker pool",
		},
		ResultChan: resultChan,
	})
	require.NoError(t, err)

	select {
	case result := <-resultChan:
		require.NoError(t, result.Err)
		require.NotNil(t, result.Check)
		assert.Equal(t, "pooled", result.Check.DocumentID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for check result")
	}
}

func TestWorkerPool_SubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkerPool(ctx)
	cancel()

	// Give workers a moment to observe cancellation.
	time.Sleep(50 * time.Millisecond)

	err := pool.Submit(&CheckJob{})
	assert.Error(t, err)
}
