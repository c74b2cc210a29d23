package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/evask/materialforge-backend/internal/export"
	"github.com/evask/materialforge-backend/internal/pricing"
	"github.com/evask/materialforge-backend/internal/services"
	"github.com/evask/materialforge-backend/internal/types"
)

type MaterialHandler struct {
	generationService services.GenerationService
	materialService   services.MaterialService
	catalog           *pricing.Catalog
}

func NewMaterialHandler(generationService services.GenerationService, materialService services.MaterialService, catalog *pricing.Catalog) *MaterialHandler {
	return &MaterialHandler{
		generationService: generationService,
		materialService:   materialService,
		catalog:           catalog,
	}
}

func (mh *MaterialHandler) Pricing(c *gin.Context) {
	RespondOK(c, mh.catalog.All())
}

func (mh *MaterialHandler) Generate(c *gin.Context) {
	var req struct {
		Title              string               `json:"title"`
		Chapters           []types.ChapterInput `json:"chapters"`
		Model              string               `json:"model"`
		GenerationPassword string               `json:"generation_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}

	res, err := mh.generationService.Generate(c.Request.Context(), services.GenerateRequest{
		Title:              req.Title,
		Chapters:           req.Chapters,
		Model:              req.Model,
		GenerationPassword: req.GenerationPassword,
	})
	if err != nil {
		RespondMappedError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"material_id":       res.Material.ID,
		"generated_content": res.Generated,
		"tokens_used":       res.TotalTokens,
		"prompt_tokens":     res.PromptTokens,
		"completion_tokens": res.CompletionTokens,
		"estimated_cost":    res.EstimatedCost,
	})
}

func (mh *MaterialHandler) List(c *gin.Context) {
	materials, err := mh.materialService.ListMaterials(c.Request.Context())
	if err != nil {
		RespondMappedError(c, err)
		return
	}
	if materials == nil {
		materials = []*types.Material{}
	}
	RespondOK(c, materials)
}

func (mh *MaterialHandler) Get(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid material id"))
		return
	}
	material, err := mh.materialService.GetMaterial(c.Request.Context(), materialID)
	if err != nil {
		RespondMappedError(c, err)
		return
	}
	RespondOK(c, material)
}

// Update accepts partial saves keyed by material id: generated_content
// carries the serialized edited document (the wire field keeps its name
// for compatibility with existing clients, but the value lands in the
// edited column; the stored generation result is immutable), and
// table_of_contents carries the outline serialized as a JSON string.
// Either field alone is a valid update.
func (mh *MaterialHandler) Update(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid material id"))
		return
	}
	var req struct {
		GeneratedContent string `json:"generated_content"`
		TableOfContents  string `json:"table_of_contents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}
	if req.GeneratedContent == "" && req.TableOfContents == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("update requires generated_content or table_of_contents"))
		return
	}

	var material *types.Material
	if req.TableOfContents != "" {
		var chapters []types.ChapterInput
		if err := json.Unmarshal([]byte(req.TableOfContents), &chapters); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("table_of_contents must encode a chapter list"))
			return
		}
		material, err = mh.materialService.SaveOutline(c.Request.Context(), materialID, chapters)
		if err != nil {
			RespondMappedError(c, err)
			return
		}
	}
	if req.GeneratedContent != "" {
		var edited types.EditedContent
		if err := json.Unmarshal([]byte(req.GeneratedContent), &edited); err != nil || edited.HTML == "" {
			RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("generated_content must encode an html document"))
			return
		}
		material, err = mh.materialService.SaveEdit(c.Request.Context(), materialID, edited.HTML)
		if err != nil {
			RespondMappedError(c, err)
			return
		}
	}
	RespondOK(c, material)
}

func (mh *MaterialHandler) Delete(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid material id"))
		return
	}
	if err := mh.materialService.DeleteMaterial(c.Request.Context(), materialID); err != nil {
		RespondMappedError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (mh *MaterialHandler) Export(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid material id"))
		return
	}
	format := export.Format(c.Param("format"))

	res, err := mh.materialService.ExportMaterial(c.Request.Context(), materialID, format)
	if err != nil {
		RespondMappedError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	c.Data(http.StatusOK, res.ContentType, res.Data)
}
