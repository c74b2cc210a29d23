package services

import (
	"crypto/subtle"

	"github.com/evask/materialforge-backend/internal/logger"
	"github.com/evask/materialforge-backend/internal/types"
)

// GenerationGate guards the generation endpoint behind a shared
// secret. The comparison is constant time; the configured secret is
// never logged.
type GenerationGate interface {
	Authorize(secret string) error
}

type generationGate struct {
	log    *logger.Logger
	secret string
}

func NewGenerationGate(log *logger.Logger, secret string) GenerationGate {
	return &generationGate{
		log:    log.With("service", "GenerationGate"),
		secret: secret,
	}
}

func (g *generationGate) Authorize(secret string) error {
	if g.secret == "" {
		g.log.Warn("Generation password not configured, rejecting all generation requests")
		return types.ErrGenerationPasswordInvalid
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(g.secret)) != 1 {
		return types.ErrGenerationPasswordInvalid
	}
	return nil
}
