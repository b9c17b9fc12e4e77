package workers

import (
	"context"
	"sync"
	"time"

	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"go.uber.org/zap"
)

const (
	defaultQueueSize = 100
	sendTimeout      = 10 * time.Second
)

type MailJob struct {
	To   string
	Link string
}

// MailWorker delivers magic links off the request path. Jobs are dropped
// when the queue is full.
type MailWorker struct {
	mailer domain.Mailer
	logger *zap.Logger
	jobs   chan MailJob
	wg     sync.WaitGroup
}

func NewMailWorker(mailer domain.Mailer, logger *zap.Logger) *MailWorker {
	return &MailWorker{
		mailer: mailer,
		logger: logger.Named("mail_worker"),
		jobs:   make(chan MailJob, defaultQueueSize),
	}
}

func (w *MailWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.logger.Info("mail worker started")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				w.drain()
				w.logger.Info("mail worker shutting down")
				return
			}
		}
	}()
}

// Wait blocks until the worker goroutine has exited.
func (w *MailWorker) Wait() {
	w.wg.Wait()
}

func (w *MailWorker) Enqueue(to, link string) {
	select {
	case w.jobs <- MailJob{To: to, Link: link}:
	default:
		w.logger.Warn("mail queue full, dropping magic link", zap.String("to", to))
	}
}

// drain sends whatever is already queued using a fresh context.
func (w *MailWorker) drain() {
	for {
		select {
		case job := <-w.jobs:
			w.processJob(context.Background(), job)
		default:
			return
		}
	}
}

func (w *MailWorker) processJob(ctx context.Context, job MailJob) {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := w.mailer.SendMagicLink(ctx, job.To, job.Link); err != nil {
		w.logger.Error("failed to send magic link", zap.String("to", job.To), zap.Error(err))
		return
	}
	w.logger.Debug("magic link sent", zap.String("to", job.To))
}
