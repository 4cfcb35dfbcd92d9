package shared

import (
	"context"
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		if migrations[0].Name != "create_session_store" {
			t.Errorf("expected first migration create_session_store, got %q", migrations[0].Name)
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(1)

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		applied, total, err := MigrationStatus(ctx, db)
		if err != nil {
			t.Fatalf("failed to read migration status: %v", err)
		}
		if applied != total || applied == 0 {
			t.Errorf("expected all %d migrations applied, got %d", total, applied)
		}

		if _, err := db.Exec("SELECT 1 FROM session_store LIMIT 1"); err != nil {
			t.Errorf("session_store table should exist after migrations: %v", err)
		}

		if err := RollbackMigration(ctx, db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		after, _, err := MigrationStatus(ctx, db)
		if err != nil {
			t.Fatalf("failed to read migration status after rollback: %v", err)
		}
		if after >= applied {
			t.Errorf("expected migration count to decrease after rollback, got %d (was %d)", after, applied)
		}
	})

	t.Run("Rollback Without Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(1)

		if err := createMigrationsTable(ctx, db); err != nil {
			t.Fatalf("failed to create migrations table: %v", err)
		}
		if err := RollbackMigration(ctx, db); err == nil {
			t.Error("expected rollback with no applied migrations to fail")
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(1)

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		applied, total, err := MigrationStatus(ctx, db)
		if err != nil {
			t.Fatalf("failed to read migration status: %v", err)
		}
		if applied != total {
			t.Errorf("expected %d migrations to be applied, got %d", total, applied)
		}
	})
}

func TestRemoveComments(t *testing.T) {
	got := removeComments("-- header\nCREATE TABLE t (id INTEGER); -- trailing\n\n")
	want := "CREATE TABLE t (id INTEGER);"
	if got != want {
		t.Errorf("removeComments() = %q, want %q", got, want)
	}
}
