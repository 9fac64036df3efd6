package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/oguzkose/sms-notes-service/environments"
	"github.com/oguzkose/sms-notes-service/pkg/logger"
)

// MySQLStore keeps objects in a single key/blob table, for deployments where
// a database is easier to operate than a shared filesystem.
type MySQLStore struct {
	db *sqlx.DB
}

func NewMySQLStore(cfg environments.DatabaseConfig) (*MySQLStore, error) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
	)

	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &MySQLStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	logger.Infof("Connected to MySQL object store")
	return store, nil
}

func (s *MySQLStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS objects (
		object_key VARCHAR(255) PRIMARY KEY,
		body LONGBLOB NOT NULL,
		content_type VARCHAR(100) NOT NULL DEFAULT 'application/octet-stream',
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *MySQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var body []byte

	err := s.db.GetContext(ctx, &body, "SELECT body FROM objects WHERE object_key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}

	return body, nil
}

func (s *MySQLStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	query := `
		INSERT INTO objects (object_key, body, content_type)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE body = VALUES(body), content_type = VALUES(content_type)
	`

	if _, err := s.db.ExecContext(ctx, query, key, data, contentType); err != nil {
		return fmt.Errorf("write object %s: %w", key, err)
	}

	return nil
}

func (s *MySQLStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	query := `
		SELECT object_key, OCTET_LENGTH(body) AS size, updated_at
		FROM objects
		WHERE object_key LIKE CONCAT(?, '%')
		ORDER BY object_key ASC
	`

	rows := []struct {
		Key      string    `db:"object_key"`
		Size     int64     `db:"size"`
		Modified time.Time `db:"updated_at"`
	}{}

	if err := s.db.SelectContext(ctx, &rows, query, prefix); err != nil {
		return nil, fmt.Errorf("list objects under %s: %w", prefix, err)
	}

	objects := make([]ObjectInfo, 0, len(rows))
	for _, r := range rows {
		objects = append(objects, ObjectInfo{Key: r.Key, Size: r.Size, Modified: r.Modified})
	}

	return objects, nil
}

func (s *MySQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *MySQLStore) Close() error {
	return s.db.Close()
}
