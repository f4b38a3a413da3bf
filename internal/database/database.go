package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"go-task-api/backend/internal/config"
)

const createTasksSQLite = `
	CREATE TABLE IF NOT EXISTS tasks (
		task_id INTEGER PRIMARY KEY AUTOINCREMENT,
		task TEXT,
		completed BOOLEAN NOT NULL DEFAULT 0,
		due_date DATE,
		priority TEXT,
		duration INTEGER
	);`

const createTasksMySQL = `
	CREATE TABLE IF NOT EXISTS tasks (
		task_id INT AUTO_INCREMENT PRIMARY KEY,
		task TEXT,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		due_date DATE,
		priority VARCHAR(255),
		duration INT
	);`

// Open はデータベース接続を開き、疎通を確認します。
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	switch cfg.Driver {
	case config.DriverSQLite:
		// SQLite は単一ファイルなので書き込みは1接続に直列化する
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// EnsureSchema は tasks テーブルが存在しなければ作成します。
func EnsureSchema(ctx context.Context, db *sql.DB, driver string) error {
	ddl := createTasksSQLite
	if driver == config.DriverMySQL {
		ddl = createTasksMySQL
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create tasks table: %w", err)
	}
	return nil
}

// InitDB はデータベース接続を初期化し、tasks テーブルを用意します。
func InitDB(ctx context.Context, cfg config.DatabaseConfig, log logrus.FieldLogger) (*sql.DB, error) {
	db, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, db, cfg.Driver); err != nil {
		db.Close()
		return nil, err
	}
	log.WithField("driver", cfg.Driver).Info("Successfully connected to database")
	return db, nil
}
