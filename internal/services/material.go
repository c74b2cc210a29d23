package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/evask/materialforge-backend/internal/export"
	"github.com/evask/materialforge-backend/internal/logger"
	"github.com/evask/materialforge-backend/internal/repos"
	"github.com/evask/materialforge-backend/internal/requestdata"
	"github.com/evask/materialforge-backend/internal/richtext"
	"github.com/evask/materialforge-backend/internal/types"
	"github.com/evask/materialforge-backend/internal/utils"
)

// ExportResult is one rendered download, ready to be written to the
// response as an attachment.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

type MaterialService interface {
	ListMaterials(ctx context.Context) ([]*types.Material, error)
	GetMaterial(ctx context.Context, materialID uuid.UUID) (*types.Material, error)
	SaveEdit(ctx context.Context, materialID uuid.UUID, html string) (*types.Material, error)
	SaveOutline(ctx context.Context, materialID uuid.UUID, chapters []types.ChapterInput) (*types.Material, error)
	DeleteMaterial(ctx context.Context, materialID uuid.UUID) error
	ExportMaterial(ctx context.Context, materialID uuid.UUID, format export.Format) (*ExportResult, error)
}

type materialService struct {
	db        *gorm.DB
	log       *logger.Logger
	matRepo   repos.MaterialRepo
	sanitizer *bluemonday.Policy
}

func NewMaterialService(db *gorm.DB, log *logger.Logger, matRepo repos.MaterialRepo) MaterialService {
	return &materialService{
		db:        db,
		log:       log.With("service", "MaterialService"),
		matRepo:   matRepo,
		sanitizer: editorPolicy(),
	}
}

// editorPolicy admits exactly what the editing surface can produce:
// headings, paragraphs, lists, inline marks and the style attributes
// the toolbar sets. Everything else is stripped before persisting.
func editorPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u", "span")
	p.AllowStyles("text-align").OnElements("p", "h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowStyles("color", "font-family").OnElements("span")
	return p
}

func (ms *materialService) ListMaterials(ctx context.Context) ([]*types.Material, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, types.ErrUnauthorized
	}
	materials, err := ms.matRepo.GetByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("Failed to list materials: %w", err)
	}
	return materials, nil
}

// GetMaterial loads one material scoped to the requesting user. A
// material owned by someone else reads as not found.
func (ms *materialService) GetMaterial(ctx context.Context, materialID uuid.UUID) (*types.Material, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, types.ErrUnauthorized
	}
	materials, err := ms.matRepo.GetByIDs(ctx, nil, []uuid.UUID{materialID})
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch material: %w", err)
	}
	if len(materials) == 0 || materials[0].UserID != rd.UserID {
		return nil, types.ErrMaterialNotFound
	}
	return materials[0], nil
}

func (ms *materialService) SaveEdit(ctx context.Context, materialID uuid.UUID, html string) (*types.Material, error) {
	material, err := ms.GetMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if len(material.GeneratedContent) == 0 {
		return nil, types.ErrNoGeneratedContent
	}

	clean := ms.sanitizer.Sanitize(html)
	edited, err := json.Marshal(types.EditedContent{HTML: clean})
	if err != nil {
		return nil, fmt.Errorf("Failed to encode edited content: %w", err)
	}

	if err := ms.matRepo.UpdateEditedContent(ctx, nil, material.ID, edited); err != nil {
		return nil, fmt.Errorf("Failed to save edited content: %w", err)
	}
	material.EditedContent = edited
	return material, nil
}

// SaveOutline replaces the stored table of contents. The outline is
// descriptive metadata once generation has run, so changing it never
// touches the generated or edited content.
func (ms *materialService) SaveOutline(ctx context.Context, materialID uuid.UUID, chapters []types.ChapterInput) (*types.Material, error) {
	material, err := ms.GetMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}

	if len(chapters) == 0 {
		return nil, fmt.Errorf("%w: at least one chapter is required", types.ErrInvalidInput)
	}
	for i := range chapters {
		chapters[i].Title = strings.TrimSpace(chapters[i].Title)
		chapters[i].Description = strings.TrimSpace(chapters[i].Description)
		if chapters[i].Title == "" {
			return nil, fmt.Errorf("%w: chapter %d has no title", types.ErrInvalidInput, i+1)
		}
	}

	toc, err := json.Marshal(chapters)
	if err != nil {
		return nil, fmt.Errorf("Failed to encode table of contents: %w", err)
	}
	if err := ms.matRepo.UpdateTableOfContents(ctx, nil, material.ID, toc); err != nil {
		return nil, fmt.Errorf("Failed to save table of contents: %w", err)
	}
	material.TableOfContents = toc
	return material, nil
}

// DeleteMaterial removes the material row. Generation events are kept:
// usage history outlives the content it paid for.
func (ms *materialService) DeleteMaterial(ctx context.Context, materialID uuid.UUID) error {
	material, err := ms.GetMaterial(ctx, materialID)
	if err != nil {
		return err
	}
	if err := ms.matRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{material.ID}); err != nil {
		return fmt.Errorf("Failed to delete material: %w", err)
	}
	ms.log.Info("Material deleted", "material_id", material.ID)
	return nil
}

// ExportMaterial renders the material's current content, preferring
// the edited document when one was saved. Rendering reads only
// persisted state, so exporting twice without edits in between yields
// the same bytes.
func (ms *materialService) ExportMaterial(ctx context.Context, materialID uuid.UUID, format export.Format) (*ExportResult, error) {
	material, err := ms.GetMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}

	doc, err := ms.exportDocument(material)
	if err != nil {
		return nil, err
	}

	exporter, err := export.For(format)
	if err != nil {
		return nil, err
	}
	data, err := exporter.Render(doc, export.Meta{Title: material.Title, Modified: material.UpdatedAt})
	if err != nil {
		return nil, fmt.Errorf("Failed to render %s export: %w", format, err)
	}
	return &ExportResult{
		Filename:    utils.ExportFilename(material.Title, exporter.Extension()),
		ContentType: exporter.ContentType(),
		Data:        data,
	}, nil
}

func (ms *materialService) exportDocument(material *types.Material) (richtext.Document, error) {
	edited, err := material.Edited()
	if err != nil {
		return richtext.Document{}, fmt.Errorf("Failed to decode edited content: %w", err)
	}
	if edited != nil && edited.HTML != "" {
		doc, pErr := richtext.ParseHTML(edited.HTML)
		if pErr != nil {
			return richtext.Document{}, fmt.Errorf("Failed to parse edited content: %w", pErr)
		}
		return doc, nil
	}

	generated, err := material.Generated()
	if err != nil {
		return richtext.Document{}, fmt.Errorf("Failed to decode generated content: %w", err)
	}
	if generated == nil {
		return richtext.Document{}, types.ErrNoGeneratedContent
	}
	return richtext.FromGenerated(generated), nil
}
