// Package indexed stores one row per task in SQLite with an index on the
// owner, so per-user reads do not scan other users' tasks. Ordering matches
// the single-blob store: added tasks go first, bulk-saved tasks go last.
package indexed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"todoList/internal/logger"
	"todoList/internal/models/task"
	repo "todoList/internal/repository"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type taskRow struct {
	ID        string `gorm:"primaryKey;type:text"`
	UserEmail string `gorm:"index;not null"`
	Position  int64  `gorm:"index;not null"`
	Title     string `gorm:"not null"`
	Comments  string
	PhotoURI  *string
	Latitude  *float64
	Longitude *float64
	Address   string
	Completed bool
	CreatedAt int64 `gorm:"autoCreateTime:false"`
}

func (taskRow) TableName() string {
	return "tasks"
}

func toRow(t *task.Task, position int64) taskRow {
	row := taskRow{
		ID:        t.ID,
		UserEmail: t.UserEmail,
		Position:  position,
		Title:     t.Title,
		Comments:  t.Comments,
		PhotoURI:  t.PhotoURI,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
	}
	if t.Location != nil {
		lat, lon := t.Location.Latitude, t.Location.Longitude
		row.Latitude = &lat
		row.Longitude = &lon
		row.Address = t.Location.Address
	}
	return row
}

func (r taskRow) toTask() *task.Task {
	t := &task.Task{
		ID:        r.ID,
		Title:     r.Title,
		Comments:  r.Comments,
		PhotoURI:  r.PhotoURI,
		Completed: r.Completed,
		UserEmail: r.UserEmail,
		CreatedAt: r.CreatedAt,
	}
	if r.Latitude != nil && r.Longitude != nil {
		t.Location = &task.Location{
			Latitude:  *r.Latitude,
			Longitude: *r.Longitude,
			Address:   r.Address,
		}
	}
	return t
}

type TaskStorage struct {
	db *gorm.DB
}

func New(path string) (*TaskStorage, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		logger.Error("Repository: could not open sqlite", err, zap.String("path", path))
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	if err := db.AutoMigrate(&taskRow{}); err != nil {
		logger.Error("Repository: sqlite migration failed", err)
		return nil, fmt.Errorf("migrating sqlite: %w", err)
	}

	logger.Info("Repository: sqlite task storage ready", zap.String("path", path))
	return &TaskStorage{db: db}, nil
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("task storage health: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("task storage health: %w", err)
	}
	return nil
}

func (s *TaskStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	logger.Info("Repository: closing sqlite")
	return sqlDB.Close()
}

func (s *TaskStorage) find(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]*task.Task, error) {
	start := time.Now()
	defer logger.Slow(op, start, 50*time.Millisecond)

	var rows []taskRow
	if err := scope(s.db.WithContext(ctx)).Order("position ASC").Find(&rows).Error; err != nil {
		logger.Error("Repository: could not read tasks", err, zap.String("operation", op))
		return nil, repo.WrapError(op, err)
	}

	res := make([]*task.Task, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.toTask())
	}
	return res, nil
}

func (s *TaskStorage) GetTasks(ctx context.Context, userEmail string) ([]*task.Task, error) {
	return s.find(ctx, "get_tasks", func(db *gorm.DB) *gorm.DB {
		return db.Where("user_email = ?", userEmail)
	})
}

func (s *TaskStorage) AllTasks(ctx context.Context) ([]*task.Task, error) {
	return s.find(ctx, "all_tasks", func(db *gorm.DB) *gorm.DB { return db })
}

func (s *TaskStorage) AddTask(ctx context.Context, taskToAdd *task.Task) error {
	start := time.Now()
	defer logger.Slow("add_task", start, 50*time.Millisecond)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var minPos sql.NullInt64
		if err := tx.Model(&taskRow{}).Select("MIN(position)").Scan(&minPos).Error; err != nil {
			return err
		}
		position := int64(0)
		if minPos.Valid {
			position = minPos.Int64 - 1
		}
		row := toRow(taskToAdd, position)
		return tx.Create(&row).Error
	})
	if err != nil {
		logger.Error("Repository: could not add task", err, zap.String("task_id", taskToAdd.ID))
		return repo.WrapError("add_task", translate(err))
	}
	return nil
}

func (s *TaskStorage) DeleteTask(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&taskRow{}, "id = ?", id).Error; err != nil {
		logger.Error("Repository: could not delete task", err, zap.String("task_id", id))
		return repo.WrapError("delete_task", err)
	}
	return nil
}

func (s *TaskStorage) UpdateTask(ctx context.Context, taskToUpdate *task.Task) error {
	row := toRow(taskToUpdate, 0)
	err := s.db.WithContext(ctx).Model(&taskRow{}).Where("id = ?", row.ID).Updates(map[string]any{
		"user_email": row.UserEmail,
		"title":      row.Title,
		"comments":   row.Comments,
		"photo_uri":  row.PhotoURI,
		"latitude":   row.Latitude,
		"longitude":  row.Longitude,
		"address":    row.Address,
		"completed":  row.Completed,
		"created_at": row.CreatedAt,
	}).Error
	if err != nil {
		logger.Error("Repository: could not update task", err, zap.String("task_id", row.ID))
		return repo.WrapError("update_task", err)
	}
	return nil
}

func (s *TaskStorage) ToggleTaskCompletion(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Model(&taskRow{}).
		Where("id = ?", id).
		Update("completed", gorm.Expr("NOT completed")).Error
	if err != nil {
		logger.Error("Repository: could not toggle task", err, zap.String("task_id", id))
		return repo.WrapError("toggle_task", err)
	}
	return nil
}

func (s *TaskStorage) SaveTasks(ctx context.Context, tasks []*task.Task) error {
	start := time.Now()
	defer logger.Slow("save_tasks", start, 100*time.Millisecond)

	emails := make([]string, 0, len(tasks))
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if _, ok := seen[t.UserEmail]; !ok {
			seen[t.UserEmail] = struct{}{}
			emails = append(emails, t.UserEmail)
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(emails) > 0 {
			if err := tx.Where("user_email IN ?", emails).Delete(&taskRow{}).Error; err != nil {
				return err
			}
		}

		var maxPos sql.NullInt64
		if err := tx.Model(&taskRow{}).Select("MAX(position)").Scan(&maxPos).Error; err != nil {
			return err
		}
		next := int64(0)
		if maxPos.Valid {
			next = maxPos.Int64 + 1
		}

		for i, t := range tasks {
			row := toRow(t, next+int64(i))
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Repository: could not save tasks", err, zap.Int("count", len(tasks)))
		return repo.WrapError("save_tasks", translate(err))
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", repo.ErrAlreadyExists, err)
	}
	return err
}
