package testutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evask/materialforge-backend/internal/types"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email, username string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Username: username,
		Password: "pw",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedMaterial creates a material with a one-chapter outline. When
// generated is true the material also carries generated content, as if
// the pipeline had run.
func SeedMaterial(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, title string, generated bool) *types.Material {
	tb.Helper()
	outline := []types.ChapterInput{{Title: "Basics", Description: "the basics"}}
	toc, err := json.Marshal(outline)
	if err != nil {
		tb.Fatalf("encode outline: %v", err)
	}
	m := &types.Material{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           title,
		TableOfContents: toc,
	}
	if generated {
		content, err := json.Marshal(types.GeneratedMaterial{
			Title: title,
			Chapters: []types.GeneratedChapter{
				{Number: 1, Title: "Basics", Content: "Generated chapter body."},
			},
		})
		if err != nil {
			tb.Fatalf("encode generated content: %v", err)
		}
		m.GeneratedContent = content
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed material: %v", err)
	}
	return m
}

func SeedGenerationEvent(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, materialID uuid.UUID, model string, totalTokens int, cost float64) *types.GenerationEvent {
	tb.Helper()
	ev := &types.GenerationEvent{
		ID:               uuid.New(),
		UserID:           userID,
		MaterialID:       materialID,
		Model:            model,
		PromptTokens:     totalTokens / 2,
		CompletionTokens: totalTokens - totalTokens/2,
		TotalTokens:      totalTokens,
		EstimatedCost:    cost,
	}
	if err := tx.WithContext(ctx).Create(ev).Error; err != nil {
		tb.Fatalf("seed generation event: %v", err)
	}
	return ev
}
