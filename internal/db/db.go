package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite3"
)

func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// InitDB opens and pings the database. SQLite connections begin every
// transaction with BEGIN IMMEDIATE so ledger writers queue on the write lock
// instead of failing on upgrade.
func InitDB(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	switch dialect {
	case MySQL:
		if !strings.Contains(dsn, "parseTime=") {
			dsn += sep(dsn) + "parseTime=true"
		}
	case SQLite:
		if !strings.Contains(dsn, "_txlock=") {
			dsn += sep(dsn) + "_txlock=immediate&_busy_timeout=10000&_journal_mode=WAL&_foreign_keys=on"
		}
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

func sep(dsn string) string {
	if strings.Contains(dsn, "?") {
		return "&"
	}
	return "?"
}

func RunMigrations(ctx context.Context, db *sql.DB, dialect Dialect) error {
	queries := sqliteMigrations
	if dialect == MySQL {
		queries = mysqlMigrations
	}

	for _, q := range queries {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

var mysqlMigrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) PRIMARY KEY,
		username VARCHAR(100) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL,
		referral_code VARCHAR(16) NOT NULL UNIQUE,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id VARCHAR(36) PRIMARY KEY,
		balance BIGINT NOT NULL DEFAULT 0,
		total_spent BIGINT NOT NULL DEFAULT 0,
		tier VARCHAR(20) NOT NULL DEFAULT 'bronze',
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		CHECK (balance >= 0),
		CHECK (total_spent >= 0)
	);`,
	`CREATE TABLE IF NOT EXISTS ledger_transactions (
		seq BIGINT NOT NULL AUTO_INCREMENT,
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		account_id VARCHAR(36) NOT NULL,
		amount BIGINT NOT NULL,
		kind VARCHAR(32) NOT NULL,
		description TEXT NOT NULL,
		reference_id VARCHAR(64) NULL,
		external_id VARCHAR(255) NULL,
		balance_after BIGINT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		UNIQUE KEY uq_ledger_seq (seq),
		UNIQUE KEY uq_ledger_external_id (external_id),
		INDEX idx_ledger_account (account_id, seq),
		FOREIGN KEY (account_id) REFERENCES accounts(id)
	);`,
	`CREATE TABLE IF NOT EXISTS ai_generations (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(36) NOT NULL,
		campaign_id VARCHAR(36) NULL,
		kind VARCHAR(32) NOT NULL,
		prompt TEXT NOT NULL,
		content LONGTEXT NOT NULL,
		model VARCHAR(64) NOT NULL,
		tokens_used INT NOT NULL DEFAULT 0,
		cost_credits BIGINT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_generations_user (user_id, created_at)
	);`,
	`CREATE TABLE IF NOT EXISTS certificates (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(36) NOT NULL,
		campaign_id VARCHAR(36) NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT NULL,
		player_name VARCHAR(255) NOT NULL,
		character_name VARCHAR(255) NULL,
		achievement VARCHAR(255) NOT NULL,
		template VARCHAR(20) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_certificates_user (user_id, created_at)
	);`,
}

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		referral_code TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		balance INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
		total_spent INTEGER NOT NULL DEFAULT 0 CHECK (total_spent >= 0),
		tier TEXT NOT NULL DEFAULT 'bronze',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS ledger_transactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		account_id TEXT NOT NULL REFERENCES accounts(id),
		amount INTEGER NOT NULL,
		kind TEXT NOT NULL,
		description TEXT NOT NULL,
		reference_id TEXT,
		external_id TEXT UNIQUE,
		balance_after INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_account ON ledger_transactions(account_id, seq);`,
	`CREATE TABLE IF NOT EXISTS ai_generations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		campaign_id TEXT,
		kind TEXT NOT NULL,
		prompt TEXT NOT NULL,
		content TEXT NOT NULL,
		model TEXT NOT NULL,
		tokens_used INTEGER NOT NULL DEFAULT 0,
		cost_credits INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_generations_user ON ai_generations(user_id, created_at);`,
	`CREATE TABLE IF NOT EXISTS certificates (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		campaign_id TEXT,
		title TEXT NOT NULL,
		description TEXT,
		player_name TEXT NOT NULL,
		character_name TEXT,
		achievement TEXT NOT NULL,
		template TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_certificates_user ON certificates(user_id, created_at);`,
}
