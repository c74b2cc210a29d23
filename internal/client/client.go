// Package client is the Go calling layer for the materialforge API.
// It owns session state the backend deliberately does not: the bearer
// token and the cached generation secret, with its
// set-on-accept/clear-on-reject lifecycle.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evask/materialforge-backend/internal/logger"
	"github.com/evask/materialforge-backend/internal/richtext"
	"github.com/evask/materialforge-backend/internal/types"
)

var (
	// ErrValidation is returned for requests rejected locally, before
	// any network call.
	ErrValidation = errors.New("invalid generation request")
	// ErrSessionExpired means the bearer token was rejected. Local
	// session state is already cleared when it is returned.
	ErrSessionExpired = errors.New("session expired, re-authentication required")
	// ErrSecretRejected means the generation secret was refused twice:
	// the cached one (or first prompt) and one fresh user-supplied
	// retry. No further attempt is made without new user input.
	ErrSecretRejected = errors.New("generation password rejected")
	// ErrGenerationInFlight guards against resubmitting a generation
	// request while one is outstanding.
	ErrGenerationInFlight = errors.New("a generation request is already in flight")
	// ErrExportPrecondition is returned when an export is attempted on
	// a material that has no renderable content.
	ErrExportPrecondition = errors.New("material has no content to export")
)

const codeSecretRejected = "generation_password_invalid"

// SecretPrompt supplies a generation secret from the user. It is only
// invoked when no cached secret exists or the cached one was rejected.
type SecretPrompt func(ctx context.Context) (string, error)

type GenerateRequest struct {
	Title    string               `json:"title"`
	Chapters []types.ChapterInput `json:"chapters"`
	Model    string               `json:"model"`
}

type GenerateResponse struct {
	MaterialID       uuid.UUID                `json:"material_id"`
	GeneratedContent *types.GeneratedMaterial `json:"generated_content"`
	TokensUsed       int                      `json:"tokens_used"`
	PromptTokens     int                      `json:"prompt_tokens"`
	CompletionTokens int                      `json:"completion_tokens"`
	EstimatedCost    float64                  `json:"estimated_cost"`
}

type Client struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
	prompt     SecretPrompt

	mu         sync.Mutex
	bearer     string
	secret     string
	generating bool
}

func New(log *logger.Logger, baseURL string, prompt SecretPrompt) *Client {
	return &Client{
		log:        log.With("component", "Client"),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 300 * time.Second},
		prompt:     prompt,
	}
}

// Reset drops all session state: bearer token and cached secret.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bearer = ""
	c.secret = ""
}

func (c *Client) Login(ctx context.Context, username, password string) error {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"username": username, "password": password}
	if _, err := c.do(ctx, http.MethodPost, "/api/login", body, &out); err != nil {
		return err
	}
	c.mu.Lock()
	c.bearer = out.AccessToken
	c.mu.Unlock()
	return nil
}

// GenerateMaterial submits one generation request under the secret
// discipline: validate locally, attach the cached secret (prompting
// only if none is cached), and on a rejection discard the cache,
// re-prompt, and retry the same request exactly once.
func (c *Client) GenerateMaterial(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if err := validateGenerateRequest(req); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.generating {
		c.mu.Unlock()
		return nil, ErrGenerationInFlight
	}
	c.generating = true
	secret := c.secret
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.generating = false
		c.mu.Unlock()
	}()

	if secret == "" {
		var err error
		secret, err = c.prompt(ctx)
		if err != nil {
			return nil, err
		}
	}

	res, err := c.generateOnce(ctx, req, secret)
	if err == nil {
		c.mu.Lock()
		c.secret = secret
		c.mu.Unlock()
		return res, nil
	}
	if !errors.Is(err, ErrSecretRejected) {
		return nil, err
	}

	// Rejected: the cached secret is gone, ask the user once.
	c.mu.Lock()
	c.secret = ""
	c.mu.Unlock()
	fresh, pErr := c.prompt(ctx)
	if pErr != nil {
		return nil, pErr
	}
	res, err = c.generateOnce(ctx, req, fresh)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.secret = fresh
	c.mu.Unlock()
	return res, nil
}

func (c *Client) generateOnce(ctx context.Context, req GenerateRequest, secret string) (*GenerateResponse, error) {
	payload := struct {
		GenerateRequest
		GenerationPassword string `json:"generation_password"`
	}{GenerateRequest: req, GenerationPassword: secret}

	var out GenerateResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/materials/generate", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetMaterial(ctx context.Context, materialID uuid.UUID) (*types.Material, error) {
	var out types.Material
	if _, err := c.do(ctx, http.MethodGet, "/api/materials/"+materialID.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportHTML renders the material locally instead of asking the
// backend: the edited document when one was saved, otherwise the
// generated content projected into its editable form.
func (c *Client) ExportHTML(ctx context.Context, materialID uuid.UUID) (string, error) {
	material, err := c.GetMaterial(ctx, materialID)
	if err != nil {
		return "", err
	}
	edited, err := material.Edited()
	if err != nil {
		return "", err
	}
	if edited != nil && edited.HTML != "" {
		return edited.HTML, nil
	}
	generated, err := material.Generated()
	if err != nil {
		return "", err
	}
	if generated == nil {
		return "", ErrExportPrecondition
	}
	return richtext.FromGenerated(generated).HTML(), nil
}

func validateGenerateRequest(req GenerateRequest) error {
	if req.Title == "" {
		return fmt.Errorf("%w: a material title is required", ErrValidation)
	}
	if len(req.Chapters) == 0 {
		return fmt.Errorf("%w: at least one chapter is required", ErrValidation)
	}
	for i, ch := range req.Chapters {
		if ch.Title == "" {
			return fmt.Errorf("%w: chapter %d has no title", ErrValidation, i+1)
		}
	}
	if req.Model == "" {
		return fmt.Errorf("%w: a model is required", ErrValidation)
	}
	return nil
}

type apiErrorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.mu.Lock()
	bearer := c.bearer
	c.mu.Unlock()
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp.StatusCode, readErr
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return resp.StatusCode, nil
		}
		return resp.StatusCode, json.Unmarshal(raw, out)
	}

	var envelope apiErrorEnvelope
	_ = json.Unmarshal(raw, &envelope)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// Session failure is not a secret failure: clear everything
		// and require a fresh login.
		c.Reset()
		return resp.StatusCode, ErrSessionExpired
	case resp.StatusCode == http.StatusForbidden && envelope.Error.Code == codeSecretRejected:
		return resp.StatusCode, ErrSecretRejected
	}
	if envelope.Error.Message != "" {
		return resp.StatusCode, fmt.Errorf("api error (%d): %s", resp.StatusCode, envelope.Error.Message)
	}
	return resp.StatusCode, fmt.Errorf("api error (%d)", resp.StatusCode)
}
