// Package gojob schedules and runs system authorization renewals as go-job
// executions.
package gojob

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-systemauth/adapters/gologger"
	"github.com/goliatone/go-systemauth/core"
)

const (
	JobIDRenew          = "systemauth.renew"
	renewScriptPath     = "systemauth/renew"
	defaultIdleInterval = time.Second
)

// RetryPolicy bounds how often a failed renewal is requeued.
type RetryPolicy struct {
	MaxAttempts     int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     5,
		BaseDelay:       30 * time.Second,
		MaxDelay:        10 * time.Minute,
		DeadLetterOnMax: true,
	}
}

// NormalizeAttempt clamps opts for the given 1-based attempt. A retry on the
// last allowed attempt becomes a dead letter, or a plain failure when
// DeadLetterOnMax is off. An unset disposition means retry.
func (p RetryPolicy) NormalizeAttempt(opts queue.NackOptions, attempt int) queue.NackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.Disposition == "" {
		out.Disposition = queue.NackDispositionRetry
	}
	if out.Disposition == queue.NackDispositionRetry && p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Disposition = queue.NackDispositionFailed
		if p.DeadLetterOnMax {
			out.Disposition = queue.NackDispositionDeadLetter
		}
	}
	if out.Disposition != queue.NackDispositionRetry {
		out.Delay = 0
	}
	return out
}

// Backoff doubles BaseDelay per attempt, capped at MaxDelay.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if p.BaseDelay <= 0 || attempt <= 0 {
		return 0
	}
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// NewRenewalMessage builds the execution message for one scheduled renewal.
// Messages sharing an idempotency key are deduplicated by the queue.
func NewRenewalMessage(idempotencyKey string) *job.ExecutionMessage {
	return &job.ExecutionMessage{
		JobID:          JobIDRenew,
		ScriptPath:     renewScriptPath,
		Parameters:     map[string]any{},
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
		DedupPolicy:    job.DedupPolicyDrop,
	}
}

type RenewalScheduler struct {
	enqueuer queue.Enqueuer
}

func NewRenewalScheduler(enqueuer queue.Enqueuer) *RenewalScheduler {
	return &RenewalScheduler{enqueuer: enqueuer}
}

func (s *RenewalScheduler) Schedule(ctx context.Context, idempotencyKey string) (queue.EnqueueReceipt, error) {
	if s == nil || s.enqueuer == nil {
		return queue.EnqueueReceipt{}, fmt.Errorf("gojob: enqueuer is not configured")
	}
	return s.enqueuer.Enqueue(ctx, NewRenewalMessage(idempotencyKey))
}

// RenewalService is the part of core.Authorizer the runner drives.
type RenewalService interface {
	RenewSystemAuthorization(ctx context.Context, handler core.RenewalHandler) error
	SetForceBlockingRenew(ctx context.Context, value bool) error
}

// RenewalJobRunner consumes renewal executions. Renewed acks and clears the
// force-blocking-renew flag. Failed sets the flag and is requeued within the
// retry policy. Rejected is dead-lettered since retrying cannot fix a missing
// account or revoked access.
type RenewalJobRunner struct {
	service      RenewalService
	dequeuer     queue.Dequeuer
	policy       RetryPolicy
	hook         worker.Hook
	logger       job.Logger
	idleInterval time.Duration

	mu       sync.Mutex
	attempts map[string]int
}

type RunnerOption func(*RenewalJobRunner)

func WithRetryPolicy(policy RetryPolicy) RunnerOption {
	return func(r *RenewalJobRunner) {
		r.policy = policy
	}
}

func WithWorkerHook(hook worker.Hook) RunnerOption {
	return func(r *RenewalJobRunner) {
		r.hook = hook
	}
}

func WithJobLogger(logger job.Logger) RunnerOption {
	return func(r *RenewalJobRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithIdleInterval sets the pause between Run iterations after a dequeue
// error.
func WithIdleInterval(interval time.Duration) RunnerOption {
	return func(r *RenewalJobRunner) {
		r.idleInterval = interval
	}
}

func NewRenewalJobRunner(service RenewalService, dequeuer queue.Dequeuer, opts ...RunnerOption) *RenewalJobRunner {
	runner := &RenewalJobRunner{
		service:      service,
		dequeuer:     dequeuer,
		policy:       DefaultRetryPolicy(),
		logger:       gologger.ToJobLogger(glog.Nop()),
		idleInterval: defaultIdleInterval,
		attempts:     map[string]int{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(runner)
		}
	}
	return runner
}

// Run processes deliveries until ctx is done.
func (r *RenewalJobRunner) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.Error("renewal job iteration failed", "error", err.Error())
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(r.idleInterval):
			}
		}
	}
}

func (r *RenewalJobRunner) RunOnce(ctx context.Context) error {
	if r == nil || r.dequeuer == nil {
		return fmt.Errorf("gojob: dequeuer is not configured")
	}
	delivery, err := r.dequeuer.Dequeue(ctx)
	if err != nil {
		return err
	}
	return r.Process(ctx, delivery)
}

// Process handles one delivery and settles it with Ack or Nack.
func (r *RenewalJobRunner) Process(ctx context.Context, delivery queue.Delivery) error {
	if r == nil || r.service == nil {
		return fmt.Errorf("gojob: renewal service is not configured")
	}
	if delivery == nil {
		return fmt.Errorf("gojob: delivery is required")
	}
	msg := delivery.Message()
	if msg == nil || strings.TrimSpace(msg.JobID) != JobIDRenew {
		jobID := ""
		if msg != nil {
			jobID = msg.JobID
		}
		r.logger.Error("unsupported job dead-lettered", "job_id", jobID)
		return delivery.Nack(ctx, queue.NackOptions{Disposition: queue.NackDispositionDeadLetter, Reason: "unsupported job " + jobID})
	}

	key := attemptKey(msg)
	event := worker.Event{
		Message:   msg,
		Delivery:  delivery,
		Attempt:   r.nextAttempt(key),
		StartedAt: time.Now().UTC(),
	}
	r.onStart(ctx, event)

	outcome, err := r.renew(ctx)
	event.Duration = time.Since(event.StartedAt)
	if err != nil {
		event.Err = err
		return r.retry(ctx, delivery, key, event, "renewal interrupted")
	}

	switch outcome.Result {
	case core.RenewalRenewed:
		if err := r.service.SetForceBlockingRenew(ctx, false); err != nil {
			r.logger.Error("force blocking renew reset failed", "error", err.Error())
		}
		r.resetAttempts(key)
		if err := delivery.Ack(ctx); err != nil {
			return err
		}
		r.logger.Info("system authorization renewed", "attempt", event.Attempt)
		r.onSuccess(ctx, event)
		return nil
	case core.RenewalRejected:
		r.resetAttempts(key)
		event.Err = outcomeError(outcome)
		r.logger.Error("system authorization renewal rejected", "error", event.Err.Error())
		r.onFailure(ctx, event)
		return delivery.Nack(ctx, queue.NackOptions{Disposition: queue.NackDispositionDeadLetter, Reason: event.Err.Error()})
	default:
		if err := r.service.SetForceBlockingRenew(ctx, true); err != nil {
			r.logger.Error("force blocking renew set failed", "error", err.Error())
		}
		event.Err = outcomeError(outcome)
		return r.retry(ctx, delivery, key, event, event.Err.Error())
	}
}

func (r *RenewalJobRunner) retry(ctx context.Context, delivery queue.Delivery, key string, event worker.Event, reason string) error {
	opts := r.policy.NormalizeAttempt(queue.NackOptions{
		Disposition: queue.NackDispositionRetry,
		Delay:       r.policy.Backoff(event.Attempt),
		Reason:      reason,
	}, event.Attempt)
	event.Delay = opts.Delay
	if opts.Disposition != queue.NackDispositionRetry {
		r.resetAttempts(key)
		r.logger.Error("system authorization renewal exhausted retries", "attempt", event.Attempt, "reason", opts.Reason)
		r.onFailure(ctx, event)
	} else {
		r.logger.Info("system authorization renewal requeued", "attempt", event.Attempt, "delay", opts.Delay.String())
		r.onRetry(ctx, event)
	}
	return delivery.Nack(ctx, opts)
}

func (r *RenewalJobRunner) renew(ctx context.Context) (core.RenewalOutcome, error) {
	outcomes := make(chan core.RenewalOutcome, 1)
	if err := r.service.RenewSystemAuthorization(ctx, func(outcome core.RenewalOutcome) {
		outcomes <- outcome
	}); err != nil {
		return core.RenewalOutcome{}, err
	}
	select {
	case <-ctx.Done():
		return core.RenewalOutcome{}, ctx.Err()
	case outcome := <-outcomes:
		return outcome, nil
	}
}

func (r *RenewalJobRunner) nextAttempt(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[key]++
	return r.attempts[key]
}

func (r *RenewalJobRunner) resetAttempts(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attempts, key)
}

func (r *RenewalJobRunner) onStart(ctx context.Context, event worker.Event) {
	if r.hook != nil {
		r.hook.OnStart(ctx, event)
	}
}

func (r *RenewalJobRunner) onSuccess(ctx context.Context, event worker.Event) {
	if r.hook != nil {
		r.hook.OnSuccess(ctx, event)
	}
}

func (r *RenewalJobRunner) onFailure(ctx context.Context, event worker.Event) {
	if r.hook != nil {
		r.hook.OnFailure(ctx, event)
	}
}

func (r *RenewalJobRunner) onRetry(ctx context.Context, event worker.Event) {
	if r.hook != nil {
		r.hook.OnRetry(ctx, event)
	}
}

// attemptKey groups redeliveries of the same scheduled renewal.
func attemptKey(msg *job.ExecutionMessage) string {
	if key := strings.TrimSpace(msg.IdempotencyKey); key != "" {
		return key
	}
	return JobIDRenew
}

func outcomeError(outcome core.RenewalOutcome) error {
	if outcome.Err != nil {
		return outcome.Err
	}
	return fmt.Errorf("gojob: renewal %s", outcome.Result)
}

var _ RenewalService = (core.Authorizer)(nil)
