package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/evask/materialforge-backend/internal/export"
	"github.com/evask/materialforge-backend/internal/logger"
	"github.com/evask/materialforge-backend/internal/pricing"
	"github.com/evask/materialforge-backend/internal/services"
	"github.com/evask/materialforge-backend/internal/types"
)

type fakeGenerationService struct {
	result *services.GenerateResult
	err    error
}

func (f *fakeGenerationService) Generate(ctx context.Context, req services.GenerateRequest) (*services.GenerateResult, error) {
	return f.result, f.err
}

type fakeMaterialService struct {
	material *types.Material

	saveEditCalls    int
	saveOutlineCalls int
	deleteCalls      int
	lastHTML         string
	lastChapters     []types.ChapterInput
}

func (f *fakeMaterialService) ListMaterials(ctx context.Context) ([]*types.Material, error) {
	return []*types.Material{f.material}, nil
}

func (f *fakeMaterialService) GetMaterial(ctx context.Context, materialID uuid.UUID) (*types.Material, error) {
	return f.material, nil
}

func (f *fakeMaterialService) SaveEdit(ctx context.Context, materialID uuid.UUID, html string) (*types.Material, error) {
	f.saveEditCalls++
	f.lastHTML = html
	return f.material, nil
}

func (f *fakeMaterialService) SaveOutline(ctx context.Context, materialID uuid.UUID, chapters []types.ChapterInput) (*types.Material, error) {
	f.saveOutlineCalls++
	f.lastChapters = chapters
	return f.material, nil
}

func (f *fakeMaterialService) DeleteMaterial(ctx context.Context, materialID uuid.UUID) error {
	f.deleteCalls++
	return nil
}

func (f *fakeMaterialService) ExportMaterial(ctx context.Context, materialID uuid.UUID, format export.Format) (*services.ExportResult, error) {
	return &services.ExportResult{Filename: "material.html", ContentType: "text/html; charset=utf-8", Data: []byte("<h1>x</h1>")}, nil
}

func newTestMaterialHandler(t *testing.T, gen services.GenerationService, mat services.MaterialService) *MaterialHandler {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	catalog, err := pricing.NewCatalog(log, "")
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return NewMaterialHandler(gen, mat, catalog)
}

func materialRequest(t *testing.T, method, body string, materialID uuid.UUID) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(method, "/api/materials", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if materialID != uuid.Nil {
		c.Params = gin.Params{{Key: "id", Value: materialID.String()}}
	}
	return c, rec
}

func TestPricingReturnsBareMapping(t *testing.T) {
	h := newTestMaterialHandler(t, &fakeGenerationService{}, &fakeMaterialService{})
	c, rec := materialRequest(t, http.MethodGet, "", uuid.Nil)

	h.Pricing(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	var body map[string]pricing.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	entry, ok := body["gpt-4o-mini"]
	if !ok {
		t.Fatalf("models must be top-level keys, got %s", rec.Body.String())
	}
	if entry.Input != 0.15 || entry.Output != 0.60 {
		t.Fatalf("gpt-4o-mini entry: %+v", entry)
	}
}

func TestGenerateResponseTokensUsedIsTotal(t *testing.T) {
	materialID := uuid.New()
	gen := &fakeGenerationService{result: &services.GenerateResult{
		Material:         &types.Material{ID: materialID},
		Generated:        &types.GeneratedMaterial{Title: "Greetings"},
		PromptTokens:     1000,
		CompletionTokens: 2000,
		TotalTokens:      3000,
		EstimatedCost:    0.00135,
	}}
	h := newTestMaterialHandler(t, gen, &fakeMaterialService{})
	c, rec := materialRequest(t, http.MethodPost,
		`{"title":"Greetings","chapters":[{"title":"Basics"}],"model":"gpt-4o-mini","generation_password":"s3cret"}`,
		uuid.Nil)

	h.Generate(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		MaterialID       uuid.UUID `json:"material_id"`
		TokensUsed       int       `json:"tokens_used"`
		PromptTokens     int       `json:"prompt_tokens"`
		CompletionTokens int       `json:"completion_tokens"`
		EstimatedCost    float64   `json:"estimated_cost"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.TokensUsed != 3000 {
		t.Fatalf("tokens_used: want=3000 got=%d (body %s)", body.TokensUsed, rec.Body.String())
	}
	if body.PromptTokens != 1000 || body.CompletionTokens != 2000 {
		t.Fatalf("token split: %+v", body)
	}
	if body.MaterialID != materialID {
		t.Fatalf("material_id: want=%s got=%s", materialID, body.MaterialID)
	}
}

func TestUpdateAcceptsOutlineOnlyPartial(t *testing.T) {
	mat := &fakeMaterialService{material: &types.Material{ID: uuid.New()}}
	h := newTestMaterialHandler(t, &fakeGenerationService{}, mat)
	c, rec := materialRequest(t, http.MethodPut,
		`{"table_of_contents":"[{\"title\":\"Basics\",\"description\":\"\"},{\"title\":\"Numbers\",\"description\":\"\"}]"}`,
		mat.material.ID)

	h.Update(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if mat.saveOutlineCalls != 1 {
		t.Fatalf("SaveOutline calls: want=1 got=%d", mat.saveOutlineCalls)
	}
	if mat.saveEditCalls != 0 {
		t.Fatalf("SaveEdit calls: want=0 got=%d", mat.saveEditCalls)
	}
	if len(mat.lastChapters) != 2 || mat.lastChapters[1].Title != "Numbers" {
		t.Fatalf("chapters passed through: %+v", mat.lastChapters)
	}
}

func TestUpdateAcceptsContentOnlyPartial(t *testing.T) {
	mat := &fakeMaterialService{material: &types.Material{ID: uuid.New()}}
	h := newTestMaterialHandler(t, &fakeGenerationService{}, mat)
	c, rec := materialRequest(t, http.MethodPut,
		`{"generated_content":"{\"html\":\"<h1>edited</h1>\"}"}`,
		mat.material.ID)

	h.Update(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if mat.saveEditCalls != 1 || mat.saveOutlineCalls != 0 {
		t.Fatalf("calls: edit=%d outline=%d", mat.saveEditCalls, mat.saveOutlineCalls)
	}
	if mat.lastHTML != "<h1>edited</h1>" {
		t.Fatalf("html passed through: %q", mat.lastHTML)
	}
}

func TestUpdateRejectsEmptyPartial(t *testing.T) {
	mat := &fakeMaterialService{material: &types.Material{ID: uuid.New()}}
	h := newTestMaterialHandler(t, &fakeGenerationService{}, mat)
	c, rec := materialRequest(t, http.MethodPut, `{}`, mat.material.ID)

	h.Update(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", rec.Code)
	}
	if mat.saveEditCalls != 0 || mat.saveOutlineCalls != 0 {
		t.Fatalf("empty update must not reach the service: edit=%d outline=%d", mat.saveEditCalls, mat.saveOutlineCalls)
	}
}

func TestDeleteReturnsNoContent(t *testing.T) {
	mat := &fakeMaterialService{material: &types.Material{ID: uuid.New()}}
	h := newTestMaterialHandler(t, &fakeGenerationService{}, mat)
	c, rec := materialRequest(t, http.MethodDelete, "", mat.material.ID)

	h.Delete(c)
	c.Writer.WriteHeaderNow()

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: want=204 got=%d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("delete must return no body, got %s", rec.Body.String())
	}
	if mat.deleteCalls != 1 {
		t.Fatalf("DeleteMaterial calls: want=1 got=%d", mat.deleteCalls)
	}
}
