package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema statements per dialect.  Statements are executed one by one so the
// MySQL DSN does not need multiStatements.  Timestamps are written by the
// application (UTC, microsecond precision) rather than by column defaults so
// both engines store identical values.
//
// Email and title are unique regardless of case only; accents still count,
// matching SQLite's NOCASE which folds ASCII letters alone.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		kind          VARCHAR(16)  NOT NULL,
		first_name    VARCHAR(100) NOT NULL,
		last_name     VARCHAR(100) NOT NULL,
		email         VARCHAR(254) NOT NULL COLLATE utf8mb4_0900_as_ci,
		password_hash VARCHAR(100) NOT NULL,
		role          VARCHAR(50)  NOT NULL,
		created_at    DATETIME(6)  NOT NULL,
		updated_at    DATETIME(6)  NOT NULL,
		UNIQUE KEY uq_accounts_email (email),
		KEY idx_accounts_kind_created (kind, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS movies (
		id                BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title             VARCHAR(200) NOT NULL COLLATE utf8mb4_0900_as_ci,
		genre             VARCHAR(100) NOT NULL,
		additional_genres VARCHAR(200) NULL,
		release_date      DATE         NOT NULL,
		director          VARCHAR(100) NOT NULL,
		cast_text         TEXT         NULL,
		duration          INT          NULL,
		certification     VARCHAR(10)  NULL,
		score             DECIMAL(3,1) NULL,
		description       TEXT         NOT NULL,
		poster_url        VARCHAR(500) NULL,
		trailer_url       VARCHAR(500) NULL,
		language          VARCHAR(50)  NOT NULL,
		country           VARCHAR(50)  NOT NULL,
		created_at        DATETIME(6)  NOT NULL,
		updated_at        DATETIME(6)  NOT NULL,
		UNIQUE KEY uq_movies_title (title),
		KEY idx_movies_created (created_at),
		KEY idx_movies_updated (updated_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id        BIGINT UNSIGNED NOT NULL,
		movie_id       BIGINT UNSIGNED NOT NULL,
		rating         INT          NOT NULL,
		comment        TEXT         NOT NULL,
		status         VARCHAR(16)  NOT NULL DEFAULT 'pending',
		admin_response TEXT         NULL,
		created_at     DATETIME(6)  NOT NULL,
		updated_at     DATETIME(6)  NOT NULL,
		UNIQUE KEY uq_reviews_user_movie (user_id, movie_id),
		KEY idx_reviews_movie (movie_id),
		KEY idx_reviews_created (created_at),
		CONSTRAINT fk_reviews_user FOREIGN KEY (user_id) REFERENCES accounts (id),
		CONSTRAINT fk_reviews_movie FOREIGN KEY (movie_id) REFERENCES movies (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token_hash CHAR(64)        NOT NULL PRIMARY KEY,
		account_id BIGINT UNSIGNED NOT NULL,
		kind       VARCHAR(16)     NOT NULL,
		role       VARCHAR(50)     NOT NULL,
		name       VARCHAR(201)    NOT NULL,
		expires_at DATETIME(6)     NOT NULL,
		created_at DATETIME(6)     NOT NULL,
		KEY idx_sessions_account (account_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		kind          TEXT NOT NULL,
		first_name    TEXT NOT NULL,
		last_name     TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL,
		created_at    DATETIME NOT NULL,
		updated_at    DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_kind_created ON accounts(kind, created_at)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		title             TEXT NOT NULL UNIQUE COLLATE NOCASE,
		genre             TEXT NOT NULL,
		additional_genres TEXT,
		release_date      DATE NOT NULL,
		director          TEXT NOT NULL,
		cast_text         TEXT,
		duration          INTEGER,
		certification     TEXT,
		score             REAL,
		description       TEXT NOT NULL,
		poster_url        TEXT,
		trailer_url       TEXT,
		language          TEXT NOT NULL,
		country           TEXT NOT NULL,
		created_at        DATETIME NOT NULL,
		updated_at        DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_movies_created ON movies(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_movies_updated ON movies(updated_at)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id        INTEGER NOT NULL REFERENCES accounts(id),
		movie_id       INTEGER NOT NULL REFERENCES movies(id),
		rating         INTEGER NOT NULL,
		comment        TEXT NOT NULL,
		status         TEXT NOT NULL DEFAULT 'pending',
		admin_response TEXT,
		created_at     DATETIME NOT NULL,
		updated_at     DATETIME NOT NULL,
		UNIQUE (user_id, movie_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_movie ON reviews(movie_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_created ON reviews(created_at)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token_hash TEXT PRIMARY KEY,
		account_id INTEGER NOT NULL,
		kind       TEXT NOT NULL,
		role       TEXT NOT NULL,
		name       TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_account ON sessions(account_id)`,
}

// Migrate creates any missing tables and indexes for the given driver.  It is
// idempotent and runs at every startup.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var stmts []string
	switch driver {
	case DriverMySQL:
		stmts = mysqlSchema
	case DriverSQLite:
		stmts = sqliteSchema
	default:
		return fmt.Errorf("migrate: unsupported driver %q", driver)
	}
	for i, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: statement %d: %w", i+1, err)
		}
	}
	return nil
}
