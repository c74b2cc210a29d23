package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/evask/materialforge-backend/internal/logger"
	"github.com/evask/materialforge-backend/internal/pricing"
	"github.com/evask/materialforge-backend/internal/repos"
	"github.com/evask/materialforge-backend/internal/repos/testutil"
	"github.com/evask/materialforge-backend/internal/requestdata"
	"github.com/evask/materialforge-backend/internal/types"
)

type fakeAIClient struct {
	calls      int
	lastModel  string
	failAt     int
	perChapter ChapterResult
}

func (f *fakeAIClient) GenerateChapter(ctx context.Context, model, materialTitle string, chapter types.ChapterInput, number int, previous []types.GeneratedChapter) (ChapterResult, error) {
	f.calls++
	f.lastModel = model
	if f.failAt > 0 && number == f.failAt {
		return ChapterResult{}, errors.New("provider unavailable")
	}
	res := f.perChapter
	if res.Content == "" {
		res.Content = fmt.Sprintf("Body of chapter %d.", number)
	}
	return res, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testCatalog(t *testing.T) *pricing.Catalog {
	t.Helper()
	catalog, err := pricing.NewCatalog(testLogger(t), "")
	if err != nil {
		t.Fatalf("pricing.NewCatalog: %v", err)
	}
	return catalog
}

func authedContext(userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})
}

func validRequest() GenerateRequest {
	return GenerateRequest{
		Title: "Business English",
		Chapters: []types.ChapterInput{
			{Title: "Introductions", Description: "greetings and small talk"},
			{Title: "Meetings"},
		},
		Model:              "gpt-4o-mini",
		GenerationPassword: "letmein",
	}
}

func TestGenerateRequiresRequestData(t *testing.T) {
	ai := &fakeAIClient{}
	svc := NewGenerationService(nil, testLogger(t), NewGenerationGate(testLogger(t), "letmein"), testCatalog(t), ai, nil, nil)

	_, err := svc.Generate(context.Background(), validRequest())
	if !errors.Is(err, types.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
	if ai.calls != 0 {
		t.Fatalf("provider called %d times for unauthenticated request", ai.calls)
	}
}

func TestGenerateValidatesBeforeAnythingElse(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*GenerateRequest)
		wantErr error
	}{
		{"empty_title", func(r *GenerateRequest) { r.Title = "  " }, types.ErrInvalidInput},
		{"no_chapters", func(r *GenerateRequest) { r.Chapters = nil }, types.ErrInvalidInput},
		{"untitled_chapter", func(r *GenerateRequest) { r.Chapters[1].Title = "" }, types.ErrInvalidInput},
		{"empty_model", func(r *GenerateRequest) { r.Model = "" }, types.ErrInvalidInput},
		{"unknown_model", func(r *GenerateRequest) { r.Model = "gpt-99" }, types.ErrPricingUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ai := &fakeAIClient{}
			// Wrong password on purpose: validation must reject first,
			// before the gate ever sees the secret.
			svc := NewGenerationService(nil, testLogger(t), NewGenerationGate(testLogger(t), "letmein"), testCatalog(t), ai, nil, nil)

			req := validRequest()
			req.GenerationPassword = "wrong"
			tc.mutate(&req)

			_, err := svc.Generate(authedContext(uuid.New()), req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
			if ai.calls != 0 {
				t.Fatalf("provider called %d times for invalid request", ai.calls)
			}
		})
	}
}

func TestGenerateRejectsWrongPassword(t *testing.T) {
	ai := &fakeAIClient{}
	svc := NewGenerationService(nil, testLogger(t), NewGenerationGate(testLogger(t), "letmein"), testCatalog(t), ai, nil, nil)

	req := validRequest()
	req.GenerationPassword = "wrong"

	_, err := svc.Generate(authedContext(uuid.New()), req)
	if !errors.Is(err, types.ErrGenerationPasswordInvalid) {
		t.Fatalf("want ErrGenerationPasswordInvalid, got %v", err)
	}
	if ai.calls != 0 {
		t.Fatalf("provider called %d times for rejected secret", ai.calls)
	}
}

func TestGenerateRejectsWhenGateUnconfigured(t *testing.T) {
	ai := &fakeAIClient{}
	svc := NewGenerationService(nil, testLogger(t), NewGenerationGate(testLogger(t), ""), testCatalog(t), ai, nil, nil)

	_, err := svc.Generate(authedContext(uuid.New()), validRequest())
	if !errors.Is(err, types.ErrGenerationPasswordInvalid) {
		t.Fatalf("want ErrGenerationPasswordInvalid, got %v", err)
	}
	if ai.calls != 0 {
		t.Fatalf("provider called %d times with unconfigured gate", ai.calls)
	}
}

func TestGenerateProviderFailureWritesNothing(t *testing.T) {
	ai := &fakeAIClient{failAt: 2}
	// nil db: a write attempt after a failed chapter would panic here.
	svc := NewGenerationService(nil, testLogger(t), NewGenerationGate(testLogger(t), "letmein"), testCatalog(t), ai, nil, nil)

	_, err := svc.Generate(authedContext(uuid.New()), validRequest())
	if !errors.Is(err, types.ErrGenerationFailed) {
		t.Fatalf("want ErrGenerationFailed, got %v", err)
	}
	if ai.calls != 2 {
		t.Fatalf("provider calls: want=2 got=%d", ai.calls)
	}
}

func TestGenerateHappyPath(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	log := testutil.Logger(t)
	matRepo := repos.NewMaterialRepo(db, log)
	eventRepo := repos.NewGenerationEventRepo(db, log)
	ai := &fakeAIClient{perChapter: ChapterResult{Content: "Chapter body.", PromptTokens: 500, CompletionTokens: 1000}}

	catalog := testCatalog(t)
	// The service opens its own transaction; handing it the test tx
	// keeps every row inside the rollback.
	svc := NewGenerationService(tx, log, NewGenerationGate(log, "letmein"), catalog, ai, matRepo, eventRepo)

	user := testutil.SeedUser(t, ctx, tx, "gen-happy@example.com", "gen-happy")
	res, err := svc.Generate(authedContext(user.ID), validRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(res.Generated.Chapters) != 2 {
		t.Fatalf("chapter count: want=2 got=%d", len(res.Generated.Chapters))
	}
	for i, ch := range res.Generated.Chapters {
		if ch.Number != i+1 {
			t.Fatalf("chapter %d numbered %d", i, ch.Number)
		}
	}
	if res.Generated.Chapters[0].Title != "Introductions" || res.Generated.Chapters[1].Title != "Meetings" {
		t.Fatalf("chapter titles out of order: %+v", res.Generated.Chapters)
	}
	if res.TotalTokens != 3000 {
		t.Fatalf("total tokens: want=3000 got=%d", res.TotalTokens)
	}
	entry, err := catalog.Lookup("gpt-4o-mini")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if want := pricing.EstimateCost(1000, 2000, entry); res.EstimatedCost != want {
		t.Fatalf("estimated cost: want=%v got=%v", want, res.EstimatedCost)
	}

	materials, err := matRepo.GetByIDs(ctx, tx, []uuid.UUID{res.Material.ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(materials) != 1 {
		t.Fatalf("persisted material count: want=1 got=%d", len(materials))
	}
	generated, err := materials[0].Generated()
	if err != nil {
		t.Fatalf("decode generated content: %v", err)
	}
	if generated == nil || len(generated.Chapters) != 2 {
		t.Fatalf("persisted generated content: %+v", generated)
	}

	events, err := eventRepo.GetByUserIDs(ctx, tx, []uuid.UUID{user.ID})
	if err != nil {
		t.Fatalf("GetByUserIDs: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("event count: want=1 got=%d", len(events))
	}
	if events[0].MaterialID != res.Material.ID {
		t.Fatalf("event material id: want=%s got=%s", res.Material.ID, events[0].MaterialID)
	}
	if events[0].Model != "gpt-4o-mini" {
		t.Fatalf("event model: want=%q got=%q", "gpt-4o-mini", events[0].Model)
	}
	if events[0].TotalTokens != 3000 {
		t.Fatalf("event total tokens: want=3000 got=%d", events[0].TotalTokens)
	}
}
