package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/evask/materialforge-backend/internal/repos/testutil"
)

func TestGenerationEventRepoCreateAndGet(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewGenerationEventRepo(db, testutil.Logger(t))
	user := testutil.SeedUser(t, ctx, tx, "ev-create@example.com", "ev-create")

	testutil.SeedGenerationEvent(t, ctx, tx, user.ID, uuid.New(), "gpt-4o-mini", 3000, 0.00135)
	testutil.SeedGenerationEvent(t, ctx, tx, user.ID, uuid.New(), "gpt-4o", 1000, 0.0125)

	got, err := repo.GetByUserIDs(ctx, tx, []uuid.UUID{user.ID})
	if err != nil {
		t.Fatalf("GetByUserIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("event count: want=2 got=%d", len(got))
	}
}

func TestGenerationEventRepoSurvivesMaterialDelete(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	eventRepo := NewGenerationEventRepo(db, testutil.Logger(t))
	matRepo := NewMaterialRepo(db, testutil.Logger(t))
	user := testutil.SeedUser(t, ctx, tx, "ev-survive@example.com", "ev-survive")

	material := testutil.SeedMaterial(t, ctx, tx, user.ID, "Ephemeral", true)
	testutil.SeedGenerationEvent(t, ctx, tx, user.ID, material.ID, "gpt-4o-mini", 2000, 0.0009)

	if err := matRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{material.ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}

	got, err := eventRepo.GetByUserIDs(ctx, tx, []uuid.UUID{user.ID})
	if err != nil {
		t.Fatalf("GetByUserIDs: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("event count after material delete: want=1 got=%d", len(got))
	}
	if got[0].MaterialID != material.ID {
		t.Fatalf("event material id: want=%s got=%s", material.ID, got[0].MaterialID)
	}
}

func TestGenerationEventRepoRecentOrdering(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewGenerationEventRepo(db, testutil.Logger(t))
	user := testutil.SeedUser(t, ctx, tx, "ev-recent@example.com", "ev-recent")

	for i := 0; i < 5; i++ {
		testutil.SeedGenerationEvent(t, ctx, tx, user.ID, uuid.New(), "gpt-4o-mini", 100*(i+1), 0.0001)
	}

	got, err := repo.GetRecentByUserID(ctx, tx, user.ID, 3)
	if err != nil {
		t.Fatalf("GetRecentByUserID: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("recent count: want=3 got=%d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Fatalf("recent events not in descending order at index %d", i)
		}
	}
}
