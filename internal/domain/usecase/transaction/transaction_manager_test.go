package transaction

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
)

func TestTransactionManager_Enqueue(t *testing.T) {
	t.Run("returns the job result", func(t *testing.T) {
		tm := NewTransactionManager(&recordingLogger{}, 0)
		defer tm.Shutdown()

		tx, err := tm.Enqueue(context.Background(), 1, func(context.Context) (*entity.Transaction, error) {
			return &entity.Transaction{TransactionID: "TRX-1"}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "TRX-1", tx.TransactionID)
	})

	t.Run("propagates job errors", func(t *testing.T) {
		tm := NewTransactionManager(&recordingLogger{}, 0)
		defer tm.Shutdown()

		boom := errors.New("boom")
		_, err := tm.Enqueue(context.Background(), 1, func(context.Context) (*entity.Transaction, error) {
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("jobs of one merchant never overlap", func(t *testing.T) {
		tm := NewTransactionManager(&recordingLogger{}, 0)
		defer tm.Shutdown()

		var running, maxRunning int32
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := tm.Enqueue(context.Background(), 7, func(context.Context) (*entity.Transaction, error) {
					n := atomic.AddInt32(&running, 1)
					for {
						m := atomic.LoadInt32(&maxRunning)
						if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
							break
						}
					}
					time.Sleep(time.Millisecond)
					atomic.AddInt32(&running, -1)
					return &entity.Transaction{}, nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
	})

	t.Run("different merchants run in parallel", func(t *testing.T) {
		tm := NewTransactionManager(&recordingLogger{}, 0)
		defer tm.Shutdown()

		release := make(chan struct{})
		started := make(chan struct{}, 2)
		var wg sync.WaitGroup
		for _, merchantID := range []uint64{1, 2} {
			wg.Add(1)
			go func(id uint64) {
				defer wg.Done()
				_, _ = tm.Enqueue(context.Background(), id, func(context.Context) (*entity.Transaction, error) {
					started <- struct{}{}
					<-release
					return nil, nil
				})
			}(merchantID)
		}

		for i := 0; i < 2; i++ {
			select {
			case <-started:
			case <-time.After(2 * time.Second):
				t.Fatal("merchant queues are not independent")
			}
		}
		close(release)
		wg.Wait()
	})

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		tm := NewTransactionManager(&recordingLogger{}, 0)
		defer tm.Shutdown()

		block := make(chan struct{})
		busy := make(chan struct{})
		go func() {
			_, _ = tm.Enqueue(context.Background(), 3, func(context.Context) (*entity.Transaction, error) {
				close(busy)
				<-block
				return nil, nil
			})
		}()
		<-busy

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := tm.Enqueue(ctx, 3, func(context.Context) (*entity.Transaction, error) {
			return &entity.Transaction{}, nil
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		close(block)
	})
}

func TestTransactionManager_Shutdown(t *testing.T) {
	tm := NewTransactionManager(&recordingLogger{}, 0)

	_, err := tm.Enqueue(context.Background(), 1, func(context.Context) (*entity.Transaction, error) {
		return &entity.Transaction{}, nil
	})
	require.NoError(t, err)

	tm.Shutdown()
	tm.Shutdown()

	_, err = tm.Enqueue(context.Background(), 1, func(context.Context) (*entity.Transaction, error) {
		return &entity.Transaction{}, nil
	})
	assert.ErrorIs(t, err, errs.ErrResourceLocked)
}
