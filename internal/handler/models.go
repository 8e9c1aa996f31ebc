package handler

import (
	"net/http"

	"ledgerly/internal/httputil"
	"ledgerly/internal/llm"
)

// ModelsHandler exposes the configured providers and their model families
type ModelsHandler struct {
	registry     *llm.Registry
	defaultModel string
}

// NewModelsHandler creates a new models handler
func NewModelsHandler(registry *llm.Registry, defaultModel string) *ModelsHandler {
	return &ModelsHandler{registry: registry, defaultModel: defaultModel}
}

type providerInfo struct {
	Name   string `json:"name"`
	Models string `json:"models"`
}

// GetProviders lists registered providers
// GET /api/models
func (h *ModelsHandler) GetProviders(w http.ResponseWriter, r *http.Request) {
	providers := h.registry.Providers()
	infos := make([]providerInfo, 0, len(providers))
	for _, p := range providers {
		infos = append(infos, providerInfo{
			Name:   p.Name(),
			Models: p.SupportedModelsDescription(),
		})
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"default_model": h.defaultModel,
		"providers":     infos,
	})
}
