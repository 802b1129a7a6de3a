package transaction

import (
	"context"
	"sync"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
)

// DefaultQueueSize is the buffered capacity of each merchant queue
const DefaultQueueSize = 100

// CreateJob creates one transaction for the merchant owning the queue
type CreateJob func(ctx context.Context) (*entity.Transaction, error)

// TransactionManager runs the creates of each merchant one at a time so that
// two requests of the same merchant never draw against the same pending
// snapshot inside this process
type TransactionManager struct {
	logger    coreport.Logger
	queueSize int

	// merchant queues, map[uint64]chan *createRequest
	queues  sync.Map
	workers sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
}

type createRequest struct {
	ctx        context.Context
	job        CreateJob
	resultChan chan createResult
}

type createResult struct {
	tx  *entity.Transaction
	err error
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(logger coreport.Logger, queueSize int) *TransactionManager {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &TransactionManager{
		logger:    logger.Named("queue"),
		queueSize: queueSize,
	}
}

// Enqueue runs job on the merchant queue and waits for its result.
// A cancelled ctx abandons the wait but not a job that already started.
func (m *TransactionManager) Enqueue(ctx context.Context, merchantID uint64, job CreateJob) (*entity.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, errs.ErrResourceLocked
	}

	queue := m.queueFor(merchantID)
	req := &createRequest{
		ctx:        ctx,
		job:        job,
		resultChan: make(chan createResult, 1),
	}

	select {
	case queue <- req:
	case <-ctx.Done():
		m.logger.Warn("Context canceled while enqueueing create", map[string]any{
			"merchant_id": merchantID,
			"error":       ctx.Err().Error(),
		})
		return nil, ctx.Err()
	}

	select {
	case res := <-req.resultChan:
		return res.tx, res.err
	case <-ctx.Done():
		m.logger.Warn("Context canceled while waiting for create", map[string]any{
			"merchant_id": merchantID,
			"error":       ctx.Err().Error(),
		})
		return nil, ctx.Err()
	}
}

func (m *TransactionManager) queueFor(merchantID uint64) chan *createRequest {
	if q, ok := m.queues.Load(merchantID); ok {
		return q.(chan *createRequest)
	}

	q, loaded := m.queues.LoadOrStore(merchantID, make(chan *createRequest, m.queueSize))
	queue := q.(chan *createRequest)
	if !loaded {
		m.logger.Debug("Starting merchant queue worker", map[string]any{"merchant_id": merchantID})
		m.workers.Add(1)
		go m.work(merchantID, queue)
	}
	return queue
}

func (m *TransactionManager) work(merchantID uint64, queue chan *createRequest) {
	defer m.workers.Done()

	for req := range queue {
		if req.ctx.Err() != nil {
			req.resultChan <- createResult{err: req.ctx.Err()}
			continue
		}
		tx, err := req.job(req.ctx)
		req.resultChan <- createResult{tx: tx, err: err}
	}

	m.logger.Debug("Merchant queue worker stopped", map[string]any{"merchant_id": merchantID})
}

// Shutdown stops accepting jobs, drains the queues and waits for the workers
func (m *TransactionManager) Shutdown() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.queues.Range(func(_, q any) bool {
		close(q.(chan *createRequest))
		return true
	})
	m.mu.Unlock()

	m.workers.Wait()
	m.logger.Info("Transaction manager shut down", nil)
}
