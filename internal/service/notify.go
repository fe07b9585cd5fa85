package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/contactbook/backend/pkg/logger"
	"github.com/contactbook/backend/pkg/mail"
	"github.com/contactbook/backend/pkg/redis"
	"go.uber.org/zap"
)

const (
	mailKindConfirmation  = "confirmation"
	mailKindResetPassword = "reset_password"

	// Identical emails to the same address within this window are dropped
	mailDedupTTL = time.Minute
	sendTimeout  = 30 * time.Second
)

type mailJob struct {
	kind     string
	email    string
	username string
	baseURL  string
	token    string
}

// DispatcherConfig sizes the mail queue and its worker pool
type DispatcherConfig struct {
	QueueSize int
	Workers   int
}

// Dispatcher delivers account emails off the request path. Enqueueing never
// blocks: when the queue is full the job is dropped and logged, since every
// email it sends can be re-requested by the user.
type Dispatcher struct {
	jobs    chan mailJob
	quit    chan struct{}
	sender  mail.Sender
	tokens  *TokenService
	redis   redis.Client
	appName string
	workers int

	wg      sync.WaitGroup
	startMu sync.Mutex
	started bool
}

func NewDispatcher(cfg DispatcherConfig, sender mail.Sender, tokens *TokenService, rdb redis.Client, appName string) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 128
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	return &Dispatcher{
		jobs:    make(chan mailJob, cfg.QueueSize),
		quit:    make(chan struct{}),
		sender:  sender,
		tokens:  tokens,
		redis:   rdb,
		appName: appName,
		workers: cfg.Workers,
	}
}

// Start launches the worker pool. Calling Start twice is a no-op.
func (d *Dispatcher) Start() {
	d.startMu.Lock()
	defer d.startMu.Unlock()
	if d.started {
		return
	}
	d.started = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	logger.GetLogger().Info("Mail dispatcher started",
		zap.Int("workers", d.workers),
		zap.Int("queue_size", cap(d.jobs)),
	)
}

// Stop signals the workers, drains queued jobs and waits for in-flight
// deliveries to finish. The jobs channel is never closed, so a request that
// races shutdown drops its mail instead of panicking.
func (d *Dispatcher) Stop() {
	d.startMu.Lock()
	if !d.started {
		d.startMu.Unlock()
		return
	}
	d.started = false
	close(d.quit)
	d.startMu.Unlock()

	d.wg.Wait()
	logger.GetLogger().Info("Mail dispatcher stopped")
}

// EnqueueConfirmation queues an address-confirmation email
func (d *Dispatcher) EnqueueConfirmation(email, username, baseURL string) {
	d.enqueue(mailJob{
		kind:     mailKindConfirmation,
		email:    email,
		username: username,
		baseURL:  baseURL,
	})
}

// EnqueueResetPassword queues a password-reset email carrying the reset token
func (d *Dispatcher) EnqueueResetPassword(email, username, baseURL, token string) {
	d.enqueue(mailJob{
		kind:     mailKindResetPassword,
		email:    email,
		username: username,
		baseURL:  baseURL,
		token:    token,
	})
}

func (d *Dispatcher) enqueue(job mailJob) {
	select {
	case <-d.quit:
		logger.GetLogger().Warn("Mail dispatcher stopped, dropping job",
			zap.String("kind", job.kind),
			zap.String("email", job.email),
		)
		return
	default:
	}

	select {
	case d.jobs <- job:
	default:
		logger.GetLogger().Warn("Mail queue full, dropping job",
			zap.String("kind", job.kind),
			zap.String("email", job.email),
		)
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobs:
			d.deliver(job)
		case <-d.quit:
			// drain whatever was queued before the stop signal
			for {
				select {
				case job := <-d.jobs:
					d.deliver(job)
				default:
					logger.GetLogger().Debug("Mail worker exiting", zap.Int("worker", id))
					return
				}
			}
		}
	}
}

// deliver renders and sends one email. Failures are logged and swallowed:
// an undeliverable email must never surface as a request error.
func (d *Dispatcher) deliver(job mailJob) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if !d.acquireDedup(ctx, job) {
		logger.GetLogger().Debug("Duplicate mail suppressed",
			zap.String("kind", job.kind),
			zap.String("email", job.email),
		)
		return
	}

	msg, err := d.buildMessage(job)
	if err != nil {
		logger.GetLogger().Error("Failed to build mail",
			zap.String("kind", job.kind),
			zap.String("email", job.email),
			zap.Error(err),
		)
		return
	}

	if d.sender == nil {
		logger.GetLogger().Warn("Mail sender not configured, dropping mail",
			zap.String("kind", job.kind),
			zap.String("email", job.email),
		)
		return
	}

	if err := d.sender.Send(ctx, msg); err != nil {
		logger.GetLogger().Error("Failed to send mail",
			zap.String("kind", job.kind),
			zap.String("email", job.email),
			zap.Error(err),
		)
		return
	}

	logger.GetLogger().Info("Mail sent",
		zap.String("kind", job.kind),
		zap.String("email", job.email),
	)
}

func (d *Dispatcher) buildMessage(job mailJob) (mail.Message, error) {
	switch job.kind {
	case mailKindConfirmation:
		// The token is minted at delivery time so retried or delayed jobs
		// still carry a fresh expiry
		token, err := d.tokens.CreateEmailToken(job.email)
		if err != nil {
			return mail.Message{}, err
		}
		return mail.Message{
			To:       job.email,
			Subject:  "Confirm your email",
			Template: mail.TemplateConfirmEmail,
			Data: map[string]any{
				"AppName":  d.appName,
				"Username": job.username,
				"Host":     job.baseURL,
				"Token":    token,
			},
		}, nil

	case mailKindResetPassword:
		return mail.Message{
			To:       job.email,
			Subject:  "Reset your password",
			Template: mail.TemplateResetPassword,
			Data: map[string]any{
				"AppName":  d.appName,
				"Username": job.username,
				"Host":     job.baseURL,
				"Token":    job.token,
			},
		}, nil

	default:
		return mail.Message{}, fmt.Errorf("unknown mail kind %q", job.kind)
	}
}

// acquireDedup claims the send slot for this (kind, email) pair. When redis
// is unavailable every send is allowed through.
func (d *Dispatcher) acquireDedup(ctx context.Context, job mailJob) bool {
	if d.redis == nil || !d.redis.IsEnabled() {
		return true
	}
	key := fmt.Sprintf("mail:sent:%s:%s", job.kind, job.email)
	ok, err := d.redis.SetNX(ctx, key, []byte("1"), mailDedupTTL)
	if err != nil {
		logger.GetLogger().Warn("Mail dedup check failed, sending anyway",
			zap.String("key", key),
			zap.Error(err),
		)
		return true
	}
	return ok
}
