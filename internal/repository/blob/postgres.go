package blob

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"todoList/internal/logger"
	repo "todoList/internal/repository"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Postgres struct {
	pool       *pgxpool.Pool
	connString string
}

func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: could not parse postgres config", err)
		return nil, fmt.Errorf("parsing postgres config: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: could not create pool", err)
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: postgres ping failed", err)
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Info("Repository: connected to PostgreSQL")
	return &Postgres{pool: pool, connString: connString}, nil
}

// Migrate applies the embedded schema migrations.
func (p *Postgres) Migrate(ctx context.Context) error {
	logger.Info("Repository: applying migrations")

	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(p.connString))
	if err != nil {
		logger.Error("Repository: could not init migrator", err)
		return fmt.Errorf("init migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: migration failed", err)
		return fmt.Errorf("applying migrations: %w", err)
	}

	logger.Info("Repository: migrations applied")
	return nil
}

func migrateURL(connString string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(connString, scheme) {
			return "pgx5://" + strings.TrimPrefix(connString, scheme)
		}
	}
	return connString
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	defer logger.Slow("postgres_get", start, 100*time.Millisecond)

	var value []byte
	err := p.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: could not read key", err, zap.String("key", key))
		return nil, repo.WrapError("postgres_get", err)
	}
	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	defer logger.Slow("postgres_set", start, 100*time.Millisecond)

	query := `INSERT INTO kv_store (key, value, updated_at)
				VALUES ($1, $2, NOW())
				ON CONFLICT (key) DO UPDATE
				SET value = EXCLUDED.value,
					updated_at = NOW()`
	if _, err := p.pool.Exec(ctx, query, key, value); err != nil {
		logger.Error("Repository: could not write key", err, zap.String("key", key))
		return repo.WrapError("postgres_set", err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		logger.Error("Repository: postgres ping failed", err)
		return repo.WrapError("postgres_ping", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	logger.Info("Repository: closed all PostgreSQL connections")
	return nil
}
