package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"todoList/internal/logger"
	"todoList/internal/models/task"
	rep "todoList/internal/repository"

	"go.uber.org/zap"
)

// TaskService coordinates the task store, the photo store and the locator.
// Every call names the acting user explicitly.
type TaskService struct {
	repo   TaskRepository
	photos PhotoStore
	now    func() time.Time
	newID  func() string
}

func NewTaskService(repo TaskRepository, photos PhotoStore, options ...Option) *TaskService {
	s := &TaskService{
		repo:   repo,
		photos: photos,
		now:    time.Now,
		newID:  task.NewID,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func validateDraft(draft task.Draft) (title, comments string, err error) {
	title, ok := task.NormalizeTitle(draft.Title)
	if !ok {
		if title == "" {
			return "", "", NewValidationError("title", "title is required")
		}
		return "", "", NewValidationError("title",
			fmt.Sprintf("title must be at most %d characters", task.MaxTitleLength))
	}

	comments, ok = task.NormalizeComments(draft.Comments)
	if !ok {
		return "", "", NewValidationError("comments",
			fmt.Sprintf("comments must be at most %d characters", task.MaxCommentsLength))
	}
	if err := validateLocation(draft.Location); err != nil {
		return "", "", err
	}
	return title, comments, nil
}

func validateLocation(loc *task.Location) *BusinessError {
	if loc != nil && !task.ValidCoordinates(loc.Latitude, loc.Longitude) {
		return NewValidationError("location", "latitude must be within [-90, 90] and longitude within [-180, 180]",
			ToDetail("latitude", fmt.Sprint(loc.Latitude)), ToDetail("longitude", fmt.Sprint(loc.Longitude)))
	}
	return nil
}

func validateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", NewValidationError("userEmail", "user email is required")
	}
	return email, nil
}

// CreateTask validates the draft before touching any store. The locator is
// asked once, only when the draft has no location of its own.
func (s *TaskService) CreateTask(ctx context.Context, userEmail string, draft task.Draft, locator Locator) (*task.Task, error) {
	userEmail, err := validateEmail(userEmail)
	if err != nil {
		return nil, err
	}
	title, comments, err := validateDraft(draft)
	if err != nil {
		logger.Info("Service: draft rejected", zap.String("user", userEmail), zap.Error(err))
		return nil, err
	}

	id := s.newID()

	var photoURI string
	if draft.Photo.Kind == task.PhotoReplaced && draft.Photo.SourceURI != "" {
		photoURI, err = s.photos.SavePhoto(ctx, draft.Photo.SourceURI, id)
		if err != nil {
			return nil, fmt.Errorf("saving photo: %w", err)
		}
	}

	loc := draft.Location
	if loc == nil && locator != nil {
		loc = locator.CurrentLocation(ctx)
	}

	t := task.New(id, userEmail, title, task.NowMillis(s.now()),
		task.WithComments(comments),
		task.WithPhotoURI(photoURI),
		task.WithLocation(loc),
	)

	if err := s.repo.AddTask(ctx, t); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	logger.Info("Service: task created",
		zap.String("task_id", t.ID),
		zap.String("user", userEmail),
		zap.Bool("photo", t.HasPhoto()),
		zap.Bool("location", t.Location != nil))
	return t, nil
}

// EditTask keeps id, owner, creation time and completion. The old photo is
// dropped before a replacement is saved; a failed save leaves no photo.
func (s *TaskService) EditTask(ctx context.Context, userEmail, id string, draft task.Draft) (*task.Task, error) {
	title, comments, err := validateDraft(draft)
	if err != nil {
		logger.Info("Service: draft rejected", zap.String("task_id", id), zap.Error(err))
		return nil, err
	}

	existing, err := s.findOwned(ctx, userEmail, id)
	if err != nil {
		return nil, err
	}

	updated := existing.Clone()
	updated.Title = title
	updated.Comments = comments
	updated.Location = nil
	if draft.Location != nil {
		l := *draft.Location
		updated.Location = &l
	}

	switch draft.Photo.Kind {
	case task.PhotoRemoved:
		if existing.HasPhoto() {
			s.dropPhoto(ctx, id)
		}
		updated.PhotoURI = nil
	case task.PhotoReplaced:
		if existing.HasPhoto() {
			s.dropPhoto(ctx, id)
		}
		updated.PhotoURI = nil
		uri, err := s.photos.SavePhoto(ctx, draft.Photo.SourceURI, id)
		if err != nil {
			if existing.HasPhoto() {
				s.clearPhotoRef(ctx, existing)
			}
			return nil, fmt.Errorf("saving photo: %w", err)
		}
		updated.PhotoURI = &uri
	}

	if err := s.repo.UpdateTask(ctx, updated); err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}

	logger.Info("Service: task updated",
		zap.String("task_id", id),
		zap.String("photo_change", string(draft.Photo.Kind)))
	return updated, nil
}

func (s *TaskService) GetTask(ctx context.Context, userEmail, id string) (*task.Task, error) {
	return s.findOwned(ctx, userEmail, id)
}

// DeleteTask removes the photo best-effort, then the task.
func (s *TaskService) DeleteTask(ctx context.Context, userEmail, id string) error {
	existing, err := s.findOwned(ctx, userEmail, id)
	if err != nil {
		return err
	}

	if existing.HasPhoto() {
		s.dropPhoto(ctx, id)
	}

	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	logger.Info("Service: task deleted", zap.String("task_id", id))
	return nil
}

func (s *TaskService) ToggleTask(ctx context.Context, userEmail, id string) (*task.Task, error) {
	existing, err := s.findOwned(ctx, userEmail, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ToggleTaskCompletion(ctx, id); err != nil {
		return nil, fmt.Errorf("toggling task: %w", err)
	}

	toggled := existing.Clone()
	toggled.Completed = !existing.Completed
	return toggled, nil
}

// ListTasks never fails: a store read error is logged and yields no tasks.
func (s *TaskService) ListTasks(ctx context.Context, userEmail string, filter task.Filter) []*task.Task {
	tasks, err := s.repo.GetTasks(ctx, userEmail)
	if err != nil {
		logger.Error("Service: could not load tasks", err, zap.String("user", userEmail))
		return []*task.Task{}
	}

	res := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Match(t) {
			res = append(res, t)
		}
	}
	return res
}

func (s *TaskService) Stats(ctx context.Context, userEmail string) task.Stats {
	return task.CountStats(s.ListTasks(ctx, userEmail, task.FilterAll))
}

// ReplaceTasks overwrites every task of userEmail with tasks. Ids and
// creation times are filled in when missing. An id already held by another
// user is rejected. An empty list deletes every task of userEmail.
func (s *TaskService) ReplaceTasks(ctx context.Context, userEmail string, tasks []*task.Task) ([]*task.Task, error) {
	userEmail, err := validateEmail(userEmail)
	if err != nil {
		return nil, err
	}

	prepared, err := s.prepare(tasks, func(t *task.Task) error {
		t.UserEmail = userEmail
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(prepared) == 0 {
		if err := s.clearTasks(ctx, userEmail); err != nil {
			return nil, err
		}
		return prepared, nil
	}

	if err := s.checkOwners(ctx, prepared); err != nil {
		return nil, err
	}
	if err := s.repo.SaveTasks(ctx, prepared); err != nil {
		return nil, fmt.Errorf("replacing tasks: %w", err)
	}
	logger.Info("Service: tasks replaced", zap.String("user", userEmail), zap.Int("count", len(prepared)))
	return prepared, nil
}

// ImportTasks bulk-saves tasks that carry their own owners; only the owners
// present in tasks are replaced.
func (s *TaskService) ImportTasks(ctx context.Context, tasks []*task.Task) (int, error) {
	prepared, err := s.prepare(tasks, func(t *task.Task) error {
		email, err := validateEmail(t.UserEmail)
		if err != nil {
			return err
		}
		t.UserEmail = email
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(prepared) == 0 {
		return 0, nil
	}

	if err := s.checkOwners(ctx, prepared); err != nil {
		return 0, err
	}
	if err := s.repo.SaveTasks(ctx, prepared); err != nil {
		return 0, fmt.Errorf("importing tasks: %w", err)
	}
	logger.Info("Service: tasks imported", zap.Int("count", len(prepared)))
	return len(prepared), nil
}

// ExportTasks returns the tasks of userEmail, or every task when it is empty.
func (s *TaskService) ExportTasks(ctx context.Context, userEmail string) ([]*task.Task, error) {
	var (
		tasks []*task.Task
		err   error
	)
	if strings.TrimSpace(userEmail) == "" {
		tasks, err = s.repo.AllTasks(ctx)
	} else {
		tasks, err = s.repo.GetTasks(ctx, strings.TrimSpace(userEmail))
	}
	if err != nil {
		return nil, fmt.Errorf("exporting tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) OpenPhoto(ctx context.Context, userEmail, id string) (io.ReadCloser, error) {
	existing, err := s.findOwned(ctx, userEmail, id)
	if err != nil {
		return nil, err
	}
	if !existing.HasPhoto() {
		return nil, NewNotFound("photo", id)
	}

	rc, err := s.photos.OpenPhoto(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Warn("Service: task references a missing photo", zap.String("task_id", id))
			return nil, NewNotFound("photo", id)
		}
		return nil, fmt.Errorf("opening photo: %w", err)
	}
	return rc, nil
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("service health check: %w", err)
	}
	return nil
}

func (s *TaskService) prepare(tasks []*task.Task, own func(*task.Task) error) ([]*task.Task, error) {
	seen := make(map[string]struct{}, len(tasks))
	prepared := make([]*task.Task, 0, len(tasks))

	for i, in := range tasks {
		if in == nil {
			return nil, NewValidationError("tasks", "task must not be null", ToDetail("index", i))
		}
		t := in.Clone()

		title, ok := task.NormalizeTitle(t.Title)
		if !ok {
			return nil, NewValidationError("title",
				fmt.Sprintf("title is required and must be at most %d characters", task.MaxTitleLength),
				ToDetail("index", i))
		}
		comments, ok := task.NormalizeComments(t.Comments)
		if !ok {
			return nil, NewValidationError("comments",
				fmt.Sprintf("comments must be at most %d characters", task.MaxCommentsLength),
				ToDetail("index", i))
		}
		t.Title, t.Comments = title, comments

		if err := own(t); err != nil {
			if busErr, ok := AsBusinessError(err); ok {
				busErr.Details["index"] = i
			}
			return nil, err
		}

		if t.ID == "" {
			t.ID = s.newID()
		}
		if !task.ValidID(t.ID) {
			return nil, NewValidationError("id",
				fmt.Sprintf("id must be 1 to %d letters, digits, '-' or '_'", task.MaxIDLength),
				ToDetail("index", i), ToDetail("id", t.ID))
		}
		if err := validateLocation(t.Location); err != nil {
			err.Details["index"] = i
			return nil, err
		}
		if _, dup := seen[t.ID]; dup {
			return nil, NewValidationError("id", "duplicate task id", ToDetail("index", i), ToDetail("id", t.ID))
		}
		seen[t.ID] = struct{}{}

		if t.CreatedAt == 0 {
			t.CreatedAt = task.NowMillis(s.now())
		}
		if t.PhotoURI != nil && *t.PhotoURI == "" {
			t.PhotoURI = nil
		}
		prepared = append(prepared, t)
	}
	return prepared, nil
}

// checkOwners rejects prepared tasks whose id is stored under a user that
// the save will not replace. SaveTasks keys on ids, so such a task would
// take over the other user's entry and its photo.
func (s *TaskService) checkOwners(ctx context.Context, prepared []*task.Task) error {
	stored, err := s.repo.AllTasks(ctx)
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}

	replaced := make(map[string]struct{}, len(prepared))
	for _, t := range prepared {
		replaced[t.UserEmail] = struct{}{}
	}
	owners := make(map[string]string, len(stored))
	for _, t := range stored {
		if _, ok := replaced[t.UserEmail]; !ok {
			owners[t.ID] = t.UserEmail
		}
	}

	for i, t := range prepared {
		if _, taken := owners[t.ID]; taken {
			logger.Warn("Service: task id held by another user", zap.String("task_id", t.ID), zap.String("user", t.UserEmail))
			return NewValidationError("id", "task id belongs to another user", ToDetail("index", i), ToDetail("id", t.ID))
		}
	}
	return nil
}

// clearTasks deletes every task of userEmail together with its photo.
func (s *TaskService) clearTasks(ctx context.Context, userEmail string) error {
	tasks, err := s.repo.GetTasks(ctx, userEmail)
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}
	for _, t := range tasks {
		if t.HasPhoto() {
			s.dropPhoto(ctx, t.ID)
		}
		if err := s.repo.DeleteTask(ctx, t.ID); err != nil && !errors.Is(err, rep.ErrNotFound) {
			return fmt.Errorf("clearing tasks: %w", err)
		}
	}
	logger.Info("Service: tasks cleared", zap.String("user", userEmail), zap.Int("count", len(tasks)))
	return nil
}

func (s *TaskService) findOwned(ctx context.Context, userEmail, id string) (*task.Task, error) {
	tasks, err := s.repo.GetTasks(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	logger.Info("Service: task not found", zap.String("task_id", id), zap.String("user", userEmail))
	return nil, NewNotFound("task", id)
}

// clearPhotoRef stores t without its photo once the file is already gone.
// The rest of t is left as it was before the edit.
func (s *TaskService) clearPhotoRef(ctx context.Context, t *task.Task) {
	cleared := t.Clone()
	cleared.PhotoURI = nil
	if err := s.repo.UpdateTask(ctx, cleared); err != nil {
		logger.Warn("Service: could not clear photo reference", zap.String("task_id", t.ID), zap.Error(err))
	}
}

// dropPhoto is best-effort: failures are logged and otherwise ignored.
func (s *TaskService) dropPhoto(ctx context.Context, id string) {
	err := s.photos.DeletePhoto(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, rep.ErrNotFound):
		logger.Debug("Service: photo already gone", zap.String("task_id", id))
	default:
		logger.Warn("Service: could not delete photo", zap.String("task_id", id), zap.Error(err))
	}
}
