// ABOUTME: Migration utility for importing a Flask-era crm.db into the devserver schema.
// ABOUTME: Provides dry-run and backup capabilities so the target database is never lost.

package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harperreed/smscrm/config"
	"github.com/harperreed/smscrm/db"
)

func main() {
	fromPath := flag.String("from", "", "Path to the Flask crm.db file (required)")
	dbPath := flag.String("db", config.DefaultDevDBPath(), "Path to the devserver database")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Create backup of the target before importing")
	flag.Parse()

	if *fromPath == "" {
		log.Fatal("Error: -from flag is required")
	}

	if err := migrate(context.Background(), *fromPath, *dbPath, *dryRun, *backup); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migration completed successfully")
}

func migrate(ctx context.Context, fromPath, dbPath string, dryRun, createBackup bool) error {
	if _, err := os.Stat(fromPath); os.IsNotExist(err) {
		return fmt.Errorf("source database does not exist: %s", fromPath)
	}

	if _, err := os.Stat(dbPath); err == nil && createBackup && !dryRun {
		backupPath := fmt.Sprintf("%s.backup.%s", dbPath, time.Now().Format("20060102-150405"))
		log.Printf("Creating backup: %s", backupPath)

		input, err := os.ReadFile(dbPath)
		if err != nil {
			return fmt.Errorf("failed to read database: %w", err)
		}

		if err := os.WriteFile(backupPath, input, 0644); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		log.Printf("Backup created successfully")
	}

	src, err := sql.Open("sqlite3", "file:"+fromPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := db.OpenDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open target database: %w", err)
	}
	defer func() { _ = dst.Close() }()

	report, err := db.ImportFlaskDatabase(ctx, src, dst, dryRun)
	if err != nil {
		return err
	}

	if dryRun {
		log.Println("DRY RUN - no changes made")
		log.Printf("Would import %d lead(s) and %d note(s)", report.Leads, report.Notes)
	} else {
		log.Printf("Imported %d lead(s) and %d note(s)", report.Leads, report.Notes)
	}
	if report.Skipped > 0 {
		log.Printf("Skipped %d lead(s) already present in %s", report.Skipped, dbPath)
	}
	return nil
}
