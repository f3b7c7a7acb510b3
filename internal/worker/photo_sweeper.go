package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"todoList/internal/logger"
	"todoList/internal/models/task"
	rep "todoList/internal/repository"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

type TaskLister interface {
	AllTasks(ctx context.Context) ([]*task.Task, error)
}

type PhotoIndex interface {
	ListPhotos(ctx context.Context) ([]string, error)
	PhotoModTime(ctx context.Context, taskID string) (time.Time, error)
	DeletePhoto(ctx context.Context, taskID string) error
}

// PhotoSweeper removes photos that no task refers to any more. They are left
// behind when a best-effort delete fails or a create fails after the upload.
// Photos younger than minAge are kept: a create saves the photo before the
// task that refers to it.
type PhotoSweeper struct {
	tasks     TaskLister
	photos    PhotoIndex
	interval  time.Duration
	minAge    time.Duration
	batchSize int
	workers   int
	now       func() time.Time
}

type SweepResult struct {
	Checked int
	Orphans int
	Young   int
	Deleted int
	Failed  int
}

func NewPhotoSweeper(tasks TaskLister, photos PhotoIndex, interval, minAge *time.Duration, batchSize *int) *PhotoSweeper {
	intervalToSet := 10 * time.Minute
	if interval != nil && *interval > 0 {
		intervalToSet = *interval
	}

	minAgeToSet := 10 * time.Minute
	if minAge != nil && *minAge > 0 {
		minAgeToSet = *minAge
	}

	batchToSet := 100
	if batchSize != nil && *batchSize > 0 {
		batchToSet = *batchSize
	}

	return &PhotoSweeper{
		tasks:     tasks,
		photos:    photos,
		interval:  intervalToSet,
		minAge:    minAgeToSet,
		batchSize: batchToSet,
		workers:   4,
		now:       time.Now,
	}
}

func (w *PhotoSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Worker: photo sweeper started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil {
				logger.Warn("Worker: photo sweep failed", zap.Error(err))
			}
		case <-ctx.Done():
			logger.Info("Worker: photo sweeper stopping")
			return
		}
	}
}

// Sweep deletes at most batchSize orphaned photos.
func (w *PhotoSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	var res SweepResult

	ids, err := w.photos.ListPhotos(ctx)
	if err != nil {
		return res, fmt.Errorf("listing photos: %w", err)
	}
	res.Checked = len(ids)
	if len(ids) == 0 {
		return res, nil
	}

	// tasks are read after the listing so a photo saved in between is seen
	// together with its task
	tasks, err := w.tasks.AllTasks(ctx)
	if err != nil {
		return res, fmt.Errorf("loading tasks: %w", err)
	}
	referenced := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if t != nil && t.HasPhoto() {
			referenced[t.ID] = struct{}{}
		}
	}

	orphans := make([]string, 0)
	for _, id := range ids {
		if len(orphans) >= w.batchSize {
			break
		}
		if _, ok := referenced[id]; ok {
			continue
		}
		young, err := w.young(ctx, id)
		if err != nil {
			logger.Warn("Worker: could not read photo age", zap.String("task_id", id), zap.Error(err))
			continue
		}
		if young {
			res.Young++
			continue
		}
		orphans = append(orphans, id)
	}
	res.Orphans = len(orphans)

	var deleted, failed atomic.Int64
	p := pool.New().WithMaxGoroutines(w.workers)
	for _, id := range orphans {
		p.Go(func() {
			err := w.photos.DeletePhoto(ctx, id)
			switch {
			case err == nil, errors.Is(err, rep.ErrNotFound):
				deleted.Add(1)
			default:
				failed.Add(1)
				logger.Warn("Worker: could not delete orphaned photo", zap.String("task_id", id), zap.Error(err))
			}
		})
	}
	p.Wait()

	res.Deleted = int(deleted.Load())
	res.Failed = int(failed.Load())

	logger.Info("Worker: photo sweep finished",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", res.Checked),
		zap.Int("orphans", res.Orphans),
		zap.Int("young", res.Young),
		zap.Int("deleted", res.Deleted),
		zap.Int("failed", res.Failed))
	return res, nil
}

// young reports whether the photo of id was written less than minAge ago.
// A photo that vanished in the meantime counts as young.
func (w *PhotoSweeper) young(ctx context.Context, id string) (bool, error) {
	modTime, err := w.photos.PhotoModTime(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return true, nil
		}
		return false, err
	}
	return w.now().Sub(modTime) < w.minAge, nil
}
