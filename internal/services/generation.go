package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evask/materialforge-backend/internal/logger"
	"github.com/evask/materialforge-backend/internal/pricing"
	"github.com/evask/materialforge-backend/internal/repos"
	"github.com/evask/materialforge-backend/internal/requestdata"
	"github.com/evask/materialforge-backend/internal/types"
)

type GenerateRequest struct {
	Title              string
	Chapters           []types.ChapterInput
	Model              string
	GenerationPassword string
}

type GenerateResult struct {
	Material         *types.Material
	Generated        *types.GeneratedMaterial
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	EstimatedCost    float64
}

type GenerationService interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

type generationService struct {
	db        *gorm.DB
	log       *logger.Logger
	gate      GenerationGate
	catalog   *pricing.Catalog
	aiClient  AIClient
	matRepo   repos.MaterialRepo
	eventRepo repos.GenerationEventRepo
}

func NewGenerationService(
	db *gorm.DB,
	log *logger.Logger,
	gate GenerationGate,
	catalog *pricing.Catalog,
	aiClient AIClient,
	matRepo repos.MaterialRepo,
	eventRepo repos.GenerationEventRepo,
) GenerationService {
	return &generationService{
		db:        db,
		log:       log.With("service", "GenerationService"),
		gate:      gate,
		catalog:   catalog,
		aiClient:  aiClient,
		matRepo:   matRepo,
		eventRepo: eventRepo,
	}
}

// Generate runs the whole pipeline for one material: validate the
// outline, authorize the shared secret, generate every chapter, then
// persist the material and its usage event in one transaction. The
// request is checked locally before the gate so a malformed outline
// never spends an authorization attempt, and the gate runs before any
// provider call so an unauthorized request never spends tokens.
func (gs *generationService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, types.ErrUnauthorized
	}

	entry, err := gs.validate(&req)
	if err != nil {
		return nil, err
	}
	if err := gs.gate.Authorize(req.GenerationPassword); err != nil {
		return nil, err
	}

	generated := &types.GeneratedMaterial{Title: req.Title}
	var promptTokens, completionTokens int
	for i, ch := range req.Chapters {
		number := i + 1
		res, genErr := gs.aiClient.GenerateChapter(ctx, req.Model, req.Title, ch, number, generated.Chapters)
		if genErr != nil {
			gs.log.Error("Chapter generation failed",
				"model", req.Model,
				"chapter", number,
				"error", genErr,
			)
			return nil, fmt.Errorf("%w: chapter %d: %v", types.ErrGenerationFailed, number, genErr)
		}
		generated.Chapters = append(generated.Chapters, types.GeneratedChapter{
			Number:  number,
			Title:   ch.Title,
			Content: res.Content,
		})
		promptTokens += res.PromptTokens
		completionTokens += res.CompletionTokens
	}

	cost := pricing.EstimateCost(promptTokens, completionTokens, entry)

	toc, err := json.Marshal(req.Chapters)
	if err != nil {
		return nil, fmt.Errorf("Failed to encode table of contents: %w", err)
	}
	content, err := json.Marshal(generated)
	if err != nil {
		return nil, fmt.Errorf("Failed to encode generated content: %w", err)
	}

	material := &types.Material{
		ID:               uuid.New(),
		UserID:           rd.UserID,
		Title:            req.Title,
		TableOfContents:  toc,
		GeneratedContent: content,
	}
	event := &types.GenerationEvent{
		ID:               uuid.New(),
		UserID:           rd.UserID,
		MaterialID:       material.ID,
		Model:            req.Model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		EstimatedCost:    cost,
	}

	if err := gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, cErr := gs.matRepo.Create(ctx, tx, []*types.Material{material}); cErr != nil {
			return fmt.Errorf("Failed to create material: %w", cErr)
		}
		if _, eErr := gs.eventRepo.Create(ctx, tx, []*types.GenerationEvent{event}); eErr != nil {
			return fmt.Errorf("Failed to record generation event: %w", eErr)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	gs.log.Info("Material generated",
		"material_id", material.ID,
		"model", req.Model,
		"chapters", len(generated.Chapters),
		"total_tokens", event.TotalTokens,
		"estimated_cost", cost,
	)

	return &GenerateResult{
		Material:         material,
		Generated:        generated,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      event.TotalTokens,
		EstimatedCost:    cost,
	}, nil
}

func (gs *generationService) validate(req *GenerateRequest) (pricing.Entry, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return pricing.Entry{}, fmt.Errorf("%w: a material title is required", types.ErrInvalidInput)
	}
	if len(req.Chapters) == 0 {
		return pricing.Entry{}, fmt.Errorf("%w: at least one chapter is required", types.ErrInvalidInput)
	}
	for i := range req.Chapters {
		req.Chapters[i].Title = strings.TrimSpace(req.Chapters[i].Title)
		req.Chapters[i].Description = strings.TrimSpace(req.Chapters[i].Description)
		if req.Chapters[i].Title == "" {
			return pricing.Entry{}, fmt.Errorf("%w: chapter %d has no title", types.ErrInvalidInput, i+1)
		}
	}
	req.Model = strings.TrimSpace(req.Model)
	if req.Model == "" {
		return pricing.Entry{}, fmt.Errorf("%w: a model is required", types.ErrInvalidInput)
	}
	return gs.catalog.Lookup(req.Model)
}
