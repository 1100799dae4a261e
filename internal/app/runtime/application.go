// Package runtime wires configuration, storage, services and background
// workers into a runnable application.
package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/taskforge/taskforge/internal/app/domain/notification"
	"github.com/taskforge/taskforge/internal/app/notify"
	"github.com/taskforge/taskforge/internal/app/queue"
	"github.com/taskforge/taskforge/internal/app/services/auditlog"
	"github.com/taskforge/taskforge/internal/app/services/deadlines"
	"github.com/taskforge/taskforge/internal/app/services/fanout"
	"github.com/taskforge/taskforge/internal/app/services/membership"
	"github.com/taskforge/taskforge/internal/app/services/projects"
	"github.com/taskforge/taskforge/internal/app/services/tasks"
	"github.com/taskforge/taskforge/internal/app/storage"
	"github.com/taskforge/taskforge/internal/app/storage/memory"
	"github.com/taskforge/taskforge/internal/app/storage/postgres"
	"github.com/taskforge/taskforge/internal/app/system"
	"github.com/taskforge/taskforge/internal/config"
	"github.com/taskforge/taskforge/pkg/logger"
)

// Application owns the wired object graph and the lifecycle of its
// long-running components.
type Application struct {
	cfg config.Config
	log *logger.Logger

	store      storage.Store
	dispatcher *notify.Dispatcher
	Projects   *projects.Service
	Tasks      *tasks.Service
	Membership *membership.Service
	Sweeper    *deadlines.Sweeper

	services []system.Service
	closeDB  func() error
}

// NewApplication builds the full object graph from configuration. Without a
// database DSN it runs on the in-memory store.
func NewApplication(cfg config.Config) (*Application, error) {
	log := logger.NewDefault("taskforge")

	var (
		store   storage.Store
		closeDB func() error
	)
	if cfg.DatabaseDSN != "" {
		pg, err := postgres.Open(cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		store = pg
		closeDB = pg.Close
		log.Info("using postgres store")
	} else {
		store = memory.New()
		log.Warn("no database configured, using in-memory store")
	}

	dispatcher := notify.NewDispatcher(log.WithField("component", "notify"), notify.NewInAppChannel(store))
	webhook := notify.NewWebhookPoster(cfg.WebhookURL, log.WithField("component", "webhook"))

	handler := fanout.New(store, store, store, store, dispatcher, webhook,
		log.WithField("component", "fanout"))
	auditor := auditlog.NewRecorder(store, log.WithField("component", "audit"))
	workers := queue.NewWorkers(auditor.Observe(handler), cfg.QueueWorkers, cfg.QueueBuffer,
		log.WithField("component", "queue"))
	workers.OnFailure(func(ctx context.Context, job queue.Job, err error) {
		if job.Actor() == "" {
			return
		}
		_ = dispatcher.Notify(ctx, job.Actor(), notification.KindJobFailed, map[string]any{
			"kind":  job.Kind(),
			"error": err.Error(),
		})
	})

	members := membership.New(store, store, log.WithField("component", "membership"))
	projectSvc := projects.New(store, store, store, members, store, dispatcher, workers,
		log.WithField("component", "projects"))
	taskSvc := tasks.New(store, store, store, store, dispatcher, workers,
		log.WithField("component", "tasks"))

	sweeper := deadlines.NewSweeper(store, store, dispatcher,
		log.WithField("component", "deadlines"))
	runner := deadlines.NewRunner(sweeper, cfg.SweepSchedule,
		log.WithField("component", "deadlines"))

	ops := newOpsServer(cfg.OpsListenAddr, log.WithField("component", "ops"))

	return &Application{
		cfg:        cfg,
		log:        log,
		store:      store,
		dispatcher: dispatcher,
		Projects:   projectSvc,
		Tasks:      taskSvc,
		Membership: members,
		Sweeper:    sweeper,
		services:   []system.Service{workers, runner, ops},
		closeDB:    closeDB,
	}, nil
}

// Run starts the background services and blocks until the context is
// cancelled, then shuts everything down in reverse order.
func (a *Application) Run(ctx context.Context) error {
	if err := system.StartAll(ctx, a.services...); err != nil {
		return err
	}
	a.log.Info("application started")

	<-ctx.Done()
	a.log.Info("shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err := system.StopAll(stopCtx, a.services...)

	if a.closeDB != nil {
		if cerr := a.closeDB(); cerr != nil {
			a.log.WithError(cerr).Warn("error closing database connection")
		}
	}
	return err
}
