package main

import (
	"database/sql"
	"log"
	"os"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var db *sql.DB

func initDB() {
	// Get database URL from environment variable, fallback to default for development
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		connStr = "user=admin password=password dbname=bumbeldb sslmode=disable"
		log.Default().Println("Warning: DATABASE_URL not set, using default connection string")
	}

	var err error
	db, err = sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Error connecting to the database:", err)
	}
	err = db.Ping()
	if err != nil {
		log.Fatal("Cannot reach the database:", err)
	}
	log.Default().Println("Database connection established successfully")

	if err := ensureSchema(db); err != nil {
		log.Fatal("Error ensuring database schema:", err)
	}
}

// ensureSchema bootstraps the tables on an empty database so a fresh
// container comes up without a manual psql step. Every statement is
// idempotent.
func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            SERIAL PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			avatar        TEXT NOT NULL DEFAULT '👤',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id     INT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			branch      TEXT NOT NULL DEFAULT '',
			year        TEXT NOT NULL DEFAULT '',
			semester    TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL DEFAULT '',
			looking_for TEXT NOT NULL DEFAULT '',
			bio         TEXT NOT NULL DEFAULT '',
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS user_choices (
			user_id    INT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			skills     BIGINT NOT NULL DEFAULT 0,
			looking    BIGINT NOT NULL DEFAULT 0,
			interests  BIGINT NOT NULL DEFAULT 0,
			experience SMALLINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS swipes (
			id         SERIAL PRIMARY KEY,
			swiper_id  INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			target_id  INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			direction  TEXT NOT NULL CHECK (direction IN ('reject','like','superlike')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (swiper_id, target_id),
			CHECK (swiper_id <> target_id)
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			id         SERIAL PRIMARY KEY,
			user_a     INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user_b     INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			score      INT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_a, user_b),
			CHECK (user_a < user_b)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_swipes_target ON swipes (target_id, direction)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user_b ON matches (user_b)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
