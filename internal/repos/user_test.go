package repos

import (
	"context"
	"testing"

	"github.com/evask/materialforge-backend/internal/repos/testutil"
)

func TestUserRepoExistenceChecks(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewUserRepo(db, testutil.Logger(t))
	testutil.SeedUser(t, ctx, tx, "exists@example.com", "exists")

	emailExists, err := repo.EmailExists(ctx, tx, "exists@example.com")
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !emailExists {
		t.Fatal("seeded email reported as missing")
	}
	usernameExists, err := repo.UsernameExists(ctx, tx, "exists")
	if err != nil {
		t.Fatalf("UsernameExists: %v", err)
	}
	if !usernameExists {
		t.Fatal("seeded username reported as missing")
	}

	emailExists, err = repo.EmailExists(ctx, tx, "missing@example.com")
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if emailExists {
		t.Fatal("missing email reported as present")
	}
}

func TestUserRepoGetByUsernames(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewUserRepo(db, testutil.Logger(t))
	seeded := testutil.SeedUser(t, ctx, tx, "byname@example.com", "byname")

	got, err := repo.GetByUsernames(ctx, tx, []string{"byname"})
	if err != nil {
		t.Fatalf("GetByUsernames: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("user count: want=1 got=%d", len(got))
	}
	if got[0].ID != seeded.ID {
		t.Fatalf("user id: want=%s got=%s", seeded.ID, got[0].ID)
	}
}
