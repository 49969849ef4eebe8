package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq" // PostgreSQL driver

	"venue_ops_backend/pkg/utils"
)

var DB *sql.DB

// InitDB opens the connection pool and verifies it with a ping. A non-empty
// schemaPath applies db_schema.sql on startup, for fresh environments.
func InitDB(host, port, user, password, dbname, sslmode, schemaPath string) error {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	var err error
	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	if err = DB.Ping(); err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	utils.LogInfo("Connected to the database")

	if schemaPath != "" {
		if err := applySchema(DB, schemaPath); err != nil {
			return err
		}
	}
	return nil
}

// applySchema reads and executes the schema file.
func applySchema(db *sql.DB, schemaPath string) error {
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("could not read schema file %s: %w", schemaPath, err)
	}
	if _, err := db.Exec(string(content)); err != nil {
		return fmt.Errorf("could not execute schema script: %w", err)
	}
	utils.LogInfo("Database schema applied")
	return nil
}

// GetDB returns the database connection pool.
func GetDB() *sql.DB {
	return DB
}
