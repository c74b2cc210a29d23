package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/evask/materialforge-backend/internal/services"
)

type TokensHandler struct {
	usageService services.UsageService
}

func NewTokensHandler(usageService services.UsageService) *TokensHandler {
	return &TokensHandler{usageService: usageService}
}

func (th *TokensHandler) Usage(c *gin.Context) {
	summary, err := th.usageService.Summary(c.Request.Context())
	if err != nil {
		RespondMappedError(c, err)
		return
	}
	RespondOK(c, summary)
}
