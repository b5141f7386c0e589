package notify

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// DispatcherConfig holds configuration for the mail dispatcher
type DispatcherConfig struct {
	Workers         int
	QueueSize       int
	MaxRetries      uint64
	InitialInterval time.Duration
	SendTimeout     time.Duration
	// DrainTimeout bounds delivery of messages still queued at shutdown
	DrainTimeout    time.Duration
}

// DefaultDispatcherConfig returns sensible defaults for the dispatcher
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Workers:         2,
		QueueSize:       100,
		MaxRetries:      3,
		InitialInterval: 2 * time.Second,
		SendTimeout:     30 * time.Second,
		DrainTimeout:    20 * time.Second,
	}
}

type job struct {
	msg  Message
	done func(error)
}

// Dispatcher delivers messages in the background. Callers never wait for
// delivery and never see delivery errors.
type Dispatcher struct {
	sender Sender
	cfg    DispatcherConfig
	queue  chan job
	done   chan struct{}
}

func NewDispatcher(sender Sender, cfg DispatcherConfig) *Dispatcher {
	def := DefaultDispatcherConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = def.SendTimeout
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = def.DrainTimeout
	}
	return &Dispatcher{
		sender: sender,
		cfg:    cfg,
		queue:  make(chan job, cfg.QueueSize),
		done:   make(chan struct{}),
	}
}

// Dispatch enqueues m without blocking. done, if not nil, is called from a
// worker with the final delivery outcome. It reports false when the queue
// is full and the message was dropped.
func (d *Dispatcher) Dispatch(m Message, done func(error)) bool {
	select {
	case d.queue <- job{msg: m, done: done}:
		return true
	default:
		log.Error().
			Str("to", m.To).
			Str("subject", m.Subject).
			Int("queue_size", d.cfg.QueueSize).
			Msg("mail queue full, message dropped")
		return false
	}
}

// Run starts the workers and blocks until ctx is cancelled and the queue
// has been drained or DrainTimeout has passed. Call it once.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	log.Info().
		Int("workers", d.cfg.Workers).
		Int("queue_size", d.cfg.QueueSize).
		Uint64("max_retries", d.cfg.MaxRetries).
		Msg("mail dispatcher started")

	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work(ctx)
		}()
	}
	wg.Wait()
	d.drain(ctx)
}

// Done is closed when Run has returned.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) work(ctx context.Context) {
	// a message taken off the queue is finished even if shutdown starts
	sendCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-d.queue:
			d.finish(sendCtx, j)
		}
	}
}

func (d *Dispatcher) drain(parent context.Context) {
	if len(d.queue) == 0 {
		log.Info().Msg("mail dispatcher stopping")
		return
	}
	log.Info().Int("pending", len(d.queue)).Dur("timeout", d.cfg.DrainTimeout).Msg("mail dispatcher draining")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), d.cfg.DrainTimeout)
	defer cancel()
	for ctx.Err() == nil {
		select {
		case j := <-d.queue:
			d.finish(ctx, j)
		default:
			log.Info().Msg("mail dispatcher stopping")
			return
		}
	}
	log.Warn().Int("pending", len(d.queue)).Msg("mail dispatcher stopped with undelivered messages")
}

func (d *Dispatcher) finish(ctx context.Context, j job) {
	err := d.deliver(ctx, j.msg)
	if j.done != nil {
		j.done(err)
	}
}

// deliver sends one message with bounded exponential backoff
func (d *Dispatcher) deliver(ctx context.Context, m Message) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = d.cfg.InitialInterval
	b := backoff.WithContext(backoff.WithMaxRetries(exp, d.cfg.MaxRetries), ctx)

	start := time.Now()
	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
		defer cancel()
		return d.sender.Send(sendCtx, m)
	}, b, func(err error, wait time.Duration) {
		log.Warn().
			Err(err).
			Str("to", m.To).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("mail send failed, retrying")
	})

	if err != nil {
		log.Error().
			Err(err).
			Str("to", m.To).
			Str("subject", m.Subject).
			Int("attempts", attempt).
			Msg("mail delivery failed")
		return err
	}
	log.Info().
		Str("to", m.To).
		Int("attempts", attempt).
		Dur("duration", time.Since(start)).
		Msg("mail delivered")
	return nil
}
