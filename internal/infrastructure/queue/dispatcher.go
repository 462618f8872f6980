package queue

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/libraryhub/circulation/internal/api/metrics"
	"github.com/libraryhub/circulation/internal/core/domain"
	"github.com/libraryhub/circulation/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ErrClosed is returned by Enqueue once Close has started.
var ErrClosed = errors.New("return queue is closed")

// Returner processes a single return.
type Returner interface {
	Return(ctx context.Context, in ports.ReturnInput) (*ports.TransactionView, error)
}

// LoanFinder loads the stored loan a queued return refers to.
type LoanFinder interface {
	FindTransaction(ctx context.Context, id string) (*domain.Transaction, error)
}

// Dispatcher routes returns to a fixed set of workers using consistent
// hashing on the stored book id, so returns of the same title are applied
// in submission order.
type Dispatcher struct {
	workers []chan ports.ReturnRequest
	service Returner
	loans   LoanFinder
	log     zerolog.Logger

	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	closing   chan struct{}
	closeOnce sync.Once
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service Returner, loans LoanFinder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.ReturnRequest, numWorkers),
		service: service,
		loans:   loans,
		log:     log,
		closing: make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ReturnRequest, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit when their channel is
// drained after Close, or immediately when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Close stops accepting returns and waits until the workers have applied
// everything already queued, or until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() {
		close(d.closing)
		d.mu.Lock()
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
		d.mu.Unlock()
	})

	drained := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain return queue: %w", ctx.Err())
	}
}

// Enqueue resolves the loan behind req and hands it to the worker owning
// the loan's book. A book id that disagrees with the stored loan is
// rejected with ErrBookMismatch. It blocks while the worker's buffer is
// full, until ctx is done.
func (d *Dispatcher) Enqueue(ctx context.Context, req ports.ReturnRequest) error {
	resolved, err := d.resolve(ctx, req)
	if err != nil {
		return err
	}
	return d.send(ctx, resolved)
}

// EnqueueBatch resolves every return before queueing any, so a batch with
// an unknown or mismatched loan is rejected whole. It reports how many were
// accepted before an error.
func (d *Dispatcher) EnqueueBatch(ctx context.Context, reqs []ports.ReturnRequest) (int, error) {
	resolved := make([]ports.ReturnRequest, 0, len(reqs))
	for i, r := range reqs {
		next, err := d.resolve(ctx, r)
		if err != nil {
			return 0, fmt.Errorf("return[%d]: %w", i, err)
		}
		resolved = append(resolved, next)
	}
	for i, r := range resolved {
		if err := d.send(ctx, r); err != nil {
			return i, err
		}
	}
	return len(resolved), nil
}

func (d *Dispatcher) resolve(ctx context.Context, req ports.ReturnRequest) (ports.ReturnRequest, error) {
	loan, err := d.loans.FindTransaction(ctx, req.TransactionID)
	if err != nil {
		return req, err
	}
	if req.BookID != "" && req.BookID != loan.BookID {
		return req, fmt.Errorf("loan %s is for book %s, not %s: %w",
			loan.ID, loan.BookID, req.BookID, domain.ErrBookMismatch)
	}
	req.BookID = loan.BookID
	return req, nil
}

func (d *Dispatcher) send(ctx context.Context, req ports.ReturnRequest) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	idx := d.shardIndex(req.ShardKey())
	select {
	case d.workers[idx] <- req:
		metrics.ReturnQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return nil
	case <-d.closing:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ReturnRequest) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-ch:
			if !ok {
				return
			}
			metrics.ReturnQueueDepth.WithLabelValues(label).Dec()
			d.process(ctx, id, req)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, worker int, req ports.ReturnRequest) {
	start := time.Now()
	in := ports.ReturnInput{TransactionID: req.TransactionID}
	view, err := d.service.Return(ctx, in)
	if errors.Is(err, domain.ErrConcurrentUpdate) {
		// a desk return or the sweeper touched the loan; reload once
		view, err = d.service.Return(ctx, in)
	}

	outcome := "returned"
	if err != nil {
		outcome = metrics.Reason(err)
		d.log.Error().Err(err).
			Str("transaction_id", req.TransactionID).
			Str("book_id", req.BookID).
			Int("worker_id", worker).
			Msg("queued return failed")
	}
	if err == nil {
		metrics.RecordReturn(view.FineAmount)
	}
	metrics.ReturnProcessingDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
