package server

import (
	"context"
	"fmt"
	"time"

	domrepo "FinPulse/internal/domain/repository"
	"FinPulse/internal/usecase"
	pkgkafka "FinPulse/pkg/kafka"
	applogger "FinPulse/pkg/logger"
)

// LoopRunner drives a periodic loop (harvest, analyze).
type LoopRunner struct {
	loop *usecase.Loop
	name string
}

func NewLoopRunner(name string, loop *usecase.Loop) *LoopRunner {
	return &LoopRunner{loop: loop, name: name}
}

func (r *LoopRunner) Name() string                  { return r.name }
func (r *LoopRunner) Run(ctx context.Context) error { return r.loop.Run(ctx) }

// ServeRunner has no work of its own; the process is its HTTP server.
type ServeRunner struct{ name string }

func NewServeRunner(name string) *ServeRunner { return &ServeRunner{name: name} }

func (r *ServeRunner) Name() string { return r.name }

func (r *ServeRunner) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// ArchiveRunner consumes price events into the tick archive.
type ArchiveRunner struct {
	archive     domrepo.TickArchive
	consumer    *pkgkafka.Consumer
	handler     pkgkafka.MessageHandler
	stopTimeout time.Duration
	log         *applogger.Logger
}

func NewArchiveRunner(archive domrepo.TickArchive, consumer *pkgkafka.Consumer, handler pkgkafka.MessageHandler, stopTimeout time.Duration, l *applogger.Logger) *ArchiveRunner {
	return &ArchiveRunner{archive: archive, consumer: consumer, handler: handler, stopTimeout: stopTimeout, log: l}
}

func (r *ArchiveRunner) Name() string { return "archive" }

func (r *ArchiveRunner) Run(ctx context.Context) error {
	if err := r.archive.Init(ctx); err != nil {
		return fmt.Errorf("archive schema: %w", err)
	}
	r.consumer.RegisterHandler(r.handler)
	if err := r.consumer.Start(ctx); err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	r.log.Info("kafka consumer started", applogger.String("topic", r.handler.Topic()))

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), r.stopTimeout)
	defer cancel()
	if err := r.consumer.Stop(stopCtx); err != nil {
		r.log.Warn("kafka consumer stop error", applogger.Error(err))
	}
	return nil
}
