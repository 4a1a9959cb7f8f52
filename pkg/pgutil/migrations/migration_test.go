package migrations

import (
	"context"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/chainsafe/wallet-settlement/pkg/pgutil"
)

// Test DAO for testing purposes
type testDao struct {
	bun.BaseModel `bun:"table:test_table"`
	ID            int64  `bun:",pk,autoincrement"`
	Name          string `bun:",notnull,type:varchar(100)"`
	Age           int    `bun:",nullzero"`
}

func TestCreateSchema(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := CreateSchema(ctx, db, &testDao{})
	if err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}
	pgutil.AssertTableExists(t, db, "test_table")

	// Verify idempotency - calling again should not fail
	err = CreateSchema(ctx, db, &testDao{})
	if err != nil {
		t.Errorf("CreateSchema() second call failed: %v", err)
	}
}

func TestDropTables(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := CreateSchema(ctx, db, &testDao{})
	if err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}

	err = DropTables(ctx, db, &testDao{})
	if err != nil {
		t.Fatalf("DropTables() failed: %v", err)
	}
	pgutil.AssertTableNotExists(t, db, "test_table")

	err = DropTables(ctx, db, &testDao{})
	if err != nil {
		t.Errorf("DropTables() second call failed: %v", err)
	}
}

func TestCreateModelIndexes(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := CreateSchema(ctx, db, &testDao{})
	if err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}

	err = CreateModelIndexes(ctx, db, &testDao{}, "name", "age")
	if err != nil {
		t.Fatalf("CreateModelIndexes() failed: %v", err)
	}
	pgutil.AssertIndexExists(t, db, "idx_test_table_name")
	pgutil.AssertIndexExists(t, db, "idx_test_table_age")

	err = CreateModelIndexes(ctx, db, &testDao{}, "name")
	if err != nil {
		t.Errorf("CreateModelIndexes() second call failed: %v", err)
	}
}

func TestCreateModelIndexes_NilModel(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()

	if err := CreateModelIndexes(context.Background(), db, nil, "name"); err == nil {
		t.Fatal("expected error for nil model")
	}
}

func TestCreateCompositeIndex(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := CreateSchema(ctx, db, &testDao{})
	if err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}

	// unique only among adults
	err = CreateCompositeIndex(ctx, db, &testDao{}, "test_table_name_age_uidx", true, "age >= 18", "name", "age")
	if err != nil {
		t.Fatalf("CreateCompositeIndex() failed: %v", err)
	}
	pgutil.AssertIndexExists(t, db, "test_table_name_age_uidx")

	err = CreateCompositeIndex(ctx, db, &testDao{}, "test_table_name_age_uidx", true, "age >= 18", "name", "age")
	if err != nil {
		t.Errorf("CreateCompositeIndex() second call failed: %v", err)
	}

	insert := func(name string, age int) error {
		_, err := db.NewInsert().Model(&testDao{Name: name, Age: age}).Exec(ctx)
		return err
	}

	if err := insert("minor", 10); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := insert("minor", 10); err != nil {
		t.Fatalf("rows outside the partial index must not conflict: %v", err)
	}
	if err := insert("adult", 30); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := insert("adult", 30); err == nil {
		t.Error("expected duplicate row inside the partial index to be rejected")
	}
	pgutil.AssertRowCount(t, db, "test_table", 3)
}

func TestRunMigrations(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()

	migrator := migrate.NewMigrator(db, migrate.NewMigrations())

	for _, cmd := range []string{"init", "up", "status", "down"} {
		if err := RunMigrations(migrator, cmd); err != nil {
			t.Fatalf("RunMigrations(%s) failed: %v", cmd, err)
		}
	}
	pgutil.AssertTableExists(t, db, "bun_migrations")

	if err := RunMigrations(migrator, "sideways"); err == nil {
		t.Fatal("expected unknown command to fail")
	}
}
