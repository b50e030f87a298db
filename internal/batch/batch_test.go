package batch

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRestoresSubmissionOrder(t *testing.T) {
	queries := []int{5, 4, 3, 2, 1, 0}
	results, err := Run(context.Background(), queries, 0, func(_ context.Context, _ int, q int) (string, error) {
		return strconv.Itoa(q * q), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"25", "16", "9", "4", "1", "0"}, results)
}

func TestRunPassesSubmissionIndex(t *testing.T) {
	queries := []string{"z", "y", "x"}
	results, err := Run(context.Background(), queries, 0, func(_ context.Context, i int, q string) (int, error) {
		return i, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, results)
}

func TestRunFailsFast(t *testing.T) {
	queries := []int{0, 1, 2, 3, 4}
	boom := errors.New("boom")

	var calls int32
	_, err := Run(context.Background(), queries, 1, func(ctx context.Context, _ int, q int) (int, error) {
		atomic.AddInt32(&calls, 1)
		if q == 2 {
			return 0, boom
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}
		return q, nil
	})
	require.Error(t, err)
}

func TestRunEmptyQueries(t *testing.T) {
	results, err := Run(context.Background(), []int{}, 4, func(_ context.Context, _ int, q int) (int, error) {
		t.Fatal("fn should not be called for an empty query set")
		return 0, nil
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRunRespectsWorkerLimit(t *testing.T) {
	queries := make([]int, 20)
	var concurrent, maxConcurrent int32

	_, err := Run(context.Background(), queries, 3, func(_ context.Context, _ int, q int) (int, error) {
		n := atomic.AddInt32(&concurrent, 1)
		for {
			cur := atomic.LoadInt32(&maxConcurrent)
			if n <= cur || atomic.CompareAndSwapInt32(&maxConcurrent, cur, n) {
				break
			}
		}
		atomic.AddInt32(&concurrent, -1)
		return q, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, maxConcurrent, int32(3))
}
