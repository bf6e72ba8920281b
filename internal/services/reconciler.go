package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vidshare-api/internal/database"
	"vidshare-api/internal/media"
	"vidshare-api/internal/models"

	"github.com/charmbracelet/log"
)

// Reconciler settles media intents left behind by interrupted requests.
type Reconciler struct {
	store  database.Store
	media  media.Store
	logger *log.Logger
	now    func() time.Time
}

func NewReconciler(store database.Store, mediaStore media.Store, logger *log.Logger) *Reconciler {
	return &Reconciler{store: store, media: mediaStore, logger: logger, now: time.Now}
}

type ReconcileReport struct {
	Scanned  int
	Resolved int
	Failed   int
}

// Run settles every intent older than staleAfter. An intent that cannot be
// settled is kept for the next run.
func (r *Reconciler) Run(ctx context.Context, staleAfter time.Duration) (ReconcileReport, error) {
	var report ReconcileReport
	intents, err := r.store.Intents().ListStale(ctx, r.now().Add(-staleAfter))
	if err != nil {
		return report, fmt.Errorf("failed to list media intents: %w", err)
	}

	for _, intent := range intents {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++
		if err := r.settle(ctx, intent); err != nil {
			report.Failed++
			r.logger.Warn("failed to settle media intent", "intent", intent.ID, "kind", intent.Kind, "video", intent.VideoID, "err", err)
			continue
		}
		report.Resolved++
		r.logger.Info("settled media intent", "intent", intent.ID, "kind", intent.Kind, "video", intent.VideoID)
	}
	return report, nil
}

func (r *Reconciler) settle(ctx context.Context, intent models.MediaIntent) error {
	switch intent.Kind {
	case models.IntentUpload:
		// A committed row owns the objects; otherwise they are orphans.
		_, err := r.store.Videos().GetByID(ctx, intent.VideoID)
		switch {
		case err == nil:
		case errors.Is(err, database.ErrNotFound):
			if err := r.deleteObjects(ctx, intent.Objects); err != nil {
				return err
			}
		default:
			return err
		}
	case models.IntentDelete:
		if err := r.deleteObjects(ctx, intent.Objects); err != nil {
			return err
		}
		if err := r.store.Videos().Delete(ctx, intent.VideoID); err != nil && !errors.Is(err, database.ErrNotFound) {
			return err
		}
	default:
		r.logger.Warn("dropping media intent of unknown kind", "intent", intent.ID, "kind", intent.Kind)
	}

	if err := r.store.Intents().Delete(ctx, intent.ID); err != nil && !errors.Is(err, database.ErrNotFound) {
		return err
	}
	return nil
}

func (r *Reconciler) deleteObjects(ctx context.Context, objects []string) error {
	var errs []error
	for _, id := range objects {
		if err := r.media.Delete(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Start runs a pass every interval until ctx is done.
func (r *Reconciler) Start(ctx context.Context, interval, staleAfter time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := r.Run(ctx, staleAfter)
			if err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("reconcile pass failed", "err", err)
				continue
			}
			if report.Scanned > 0 {
				r.logger.Info("reconcile pass", "scanned", report.Scanned, "resolved", report.Resolved, "failed", report.Failed)
			}
		}
	}
}
