package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"github.com/yashrajoria/storefront-backend/models"
	awspkg "github.com/yashrajoria/storefront-backend/pkg/aws"
	"github.com/yashrajoria/storefront-backend/providers"
	"github.com/yashrajoria/storefront-backend/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	baseBackoff = 30 * time.Second
	maxBackoff  = 30 * time.Minute
	claimLease  = 2 * time.Minute
)

// Backoff is the delay before retry number attempt+1.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := baseBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

// FulfillmentService forwards orders to the warehouse and keeps retrying
// the ones that could not be delivered on the first try.
type FulfillmentService struct {
	client      providers.FulfillmentClient
	orders      repository.OrderRepo
	jobs        repository.FulfillmentJobRepo
	metrics     awspkg.Recorder
	maxAttempts int
	now         func() time.Time
	log         *zap.Logger
}

func NewFulfillmentService(client providers.FulfillmentClient, orders repository.OrderRepo, jobs repository.FulfillmentJobRepo, metrics awspkg.Recorder, maxAttempts int, log *zap.Logger) *FulfillmentService {
	if metrics == nil {
		metrics = awspkg.NopRecorder{}
	}
	if maxAttempts < 1 {
		maxAttempts = 8
	}
	return &FulfillmentService{
		client:      client,
		orders:      orders,
		jobs:        jobs,
		metrics:     metrics,
		maxAttempts: maxAttempts,
		now:         time.Now,
		log:         log,
	}
}

// Dispatch makes one delivery attempt. On failure the order is queued for
// retry and the delivery error is returned; the order itself stays placed.
func (s *FulfillmentService) Dispatch(ctx context.Context, order *models.Order) error {
	err := s.deliver(ctx, order)
	if err == nil {
		return nil
	}

	s.log.Warn("fulfillment dispatch failed, queued for retry",
		zap.String("order_id", order.ID.Hex()),
		zap.Error(err),
	)
	_ = s.metrics.RecordCount(ctx, awspkg.MetricFulfillmentFailed, nil)

	now := s.now().UTC()
	job := &models.FulfillmentJob{
		OrderID:       order.ID,
		Status:        models.JobPending,
		Attempts:      1,
		LastError:     err.Error(),
		NextAttemptAt: now.Add(Backoff(1)),
	}
	if qerr := s.jobs.Enqueue(ctx, job); qerr != nil {
		s.log.Error("failed to enqueue fulfillment job",
			zap.String("order_id", order.ID.Hex()),
			zap.Error(qerr),
		)
	}
	return err
}

func (s *FulfillmentService) deliver(ctx context.Context, order *models.Order) error {
	res, err := s.client.CreateOrder(ctx, providers.NewFulfillmentOrder(order))
	if err != nil {
		return err
	}
	if err := s.orders.SetFulfillment(ctx, order.ID, res); err != nil {
		// The warehouse has the order; only the local ids are missing.
		s.log.Error("failed to store fulfillment ids",
			zap.String("order_id", order.ID.Hex()),
			zap.Error(err),
		)
	}
	order.DepoterID, order.DepoterOrderID = res.DepoterID, res.DepoterOrderID
	_ = s.metrics.RecordCount(ctx, awspkg.MetricFulfillmentDispatched, nil)
	return nil
}

// ProcessPending retries up to limit due jobs and reports how many it handled.
func (s *FulfillmentService) ProcessPending(ctx context.Context, limit int) (int, error) {
	handled := 0
	for handled < limit {
		if err := ctx.Err(); err != nil {
			return handled, err
		}
		now := s.now().UTC()
		job, err := s.jobs.ClaimDue(ctx, now, claimLease)
		if errors.Is(err, repository.ErrNotFound) {
			return handled, nil
		}
		if err != nil {
			return handled, fmt.Errorf("claim fulfillment job: %w", err)
		}
		s.process(ctx, job, now)
		handled++
	}
	return handled, nil
}

func (s *FulfillmentService) process(ctx context.Context, job *models.FulfillmentJob, now time.Time) {
	attempt := job.Attempts + 1
	log := s.log.With(zap.String("job_id", job.ID.Hex()), zap.String("order_id", job.OrderID.Hex()), zap.Int("attempt", attempt))

	order, err := s.orders.FindByID(ctx, job.OrderID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Error("fulfillment job references a missing order")
		s.mark(log, s.jobs.MarkFailed(ctx, job.ID, job.Attempts, "order not found"))
		return
	}
	if err != nil {
		log.Warn("failed to load order for fulfillment", zap.Error(err))
		s.mark(log, s.jobs.MarkRetry(ctx, job.ID, job.Attempts, err.Error(), now.Add(Backoff(attempt))))
		return
	}

	if order.DepoterOrderID != "" {
		s.mark(log, s.jobs.MarkSucceeded(ctx, job.ID, job.Attempts))
		return
	}

	if err := s.deliver(ctx, order); err != nil {
		_ = s.metrics.RecordCount(ctx, awspkg.MetricFulfillmentFailed, nil)
		if attempt >= s.maxAttempts {
			log.Error("fulfillment job exhausted its attempts", zap.Error(err))
			s.mark(log, s.jobs.MarkFailed(ctx, job.ID, attempt, err.Error()))
			return
		}
		log.Warn("fulfillment retry failed", zap.Error(err))
		s.mark(log, s.jobs.MarkRetry(ctx, job.ID, attempt, err.Error(), now.Add(Backoff(attempt))))
		return
	}

	log.Info("fulfillment job delivered")
	s.mark(log, s.jobs.MarkSucceeded(ctx, job.ID, attempt))
}

func (s *FulfillmentService) mark(log *zap.Logger, err error) {
	if err != nil {
		log.Error("failed to update fulfillment job", zap.Error(err))
	}
}

func (s *FulfillmentService) ListJobs(ctx context.Context, status string) ([]models.FulfillmentJob, error) {
	switch status {
	case "", models.JobPending, models.JobSucceeded, models.JobFailed:
	default:
		return nil, apperrors.ErrValidation.WithMessage("Invalid job status")
	}
	jobs, err := s.jobs.List(ctx, status)
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	return jobs, nil
}

// Retry makes a job due now, including failed ones.
func (s *FulfillmentService) Retry(ctx context.Context, jobID string) error {
	id, err := primitive.ObjectIDFromHex(jobID)
	if err != nil {
		return apperrors.ErrInvalidInput.WithMessage("Invalid job id")
	}
	if err := s.jobs.Reset(ctx, id, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrNotFound.WithMessage("Job not found")
		}
		return apperrors.ErrInternalServer.Wrap(err)
	}
	return nil
}

// FulfillmentWorker polls the outbox on a fixed interval.
type FulfillmentWorker struct {
	svc      *FulfillmentService
	interval time.Duration
	batch    int
	log      *zap.Logger
}

func NewFulfillmentWorker(svc *FulfillmentService, interval time.Duration, batch int, log *zap.Logger) *FulfillmentWorker {
	if batch < 1 {
		batch = 20
	}
	return &FulfillmentWorker{svc: svc, interval: interval, batch: batch, log: log}
}

// Run blocks until ctx is cancelled.
func (w *FulfillmentWorker) Run(ctx context.Context) {
	w.log.Info("fulfillment worker started", zap.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("fulfillment worker stopped")
			return
		case <-ticker.C:
			n, err := w.svc.ProcessPending(ctx, w.batch)
			if err != nil && !errors.Is(err, context.Canceled) {
				w.log.Error("fulfillment sweep failed", zap.Error(err))
			}
			if n > 0 {
				w.log.Info("fulfillment sweep", zap.Int("jobs", n))
			}
		}
	}
}
