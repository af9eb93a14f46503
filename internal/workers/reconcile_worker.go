package workers

import (
	"context"
	"time"

	"campusreq_backend/internal/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const ReconcileJobName = "reconcile"

// ReconcileWorker runs the periodic sweep.
type ReconcileWorker struct {
	db      *gorm.DB
	service services.ReconcileService
	logger  *zap.Logger
	timeout time.Duration
}

func NewReconcileWorker(db *gorm.DB, service services.ReconcileService, logger *zap.Logger) *ReconcileWorker {
	return &ReconcileWorker{
		db:      db,
		service: service,
		logger:  logger.Named("reconcile_worker"),
		timeout: 50 * time.Second,
	}
}

// Register adds the sweep to s under schedule.
func (w *ReconcileWorker) Register(s *Scheduler, schedule string) error {
	return s.Register(ReconcileJobName, schedule, w.Run)
}

func (w *ReconcileWorker) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	result, err := w.service.Reconcile(ctx, w.db, time.Now())
	if err != nil {
		return err
	}
	if result.BroadcastFailed {
		w.logger.Warn("sweep committed but broadcast failed")
	}
	return nil
}
