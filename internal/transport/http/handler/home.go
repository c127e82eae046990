package handler

import (
	"net/http"

	"github.com/ashif1996/recipe-nest/internal/application/category"
	"github.com/ashif1996/recipe-nest/internal/application/recipe"
	"github.com/ashif1996/recipe-nest/internal/domain"
)

// HomeHandler assembles the landing page payload.
type HomeHandler struct {
	recipes    recipe.Service
	categories category.Service
}

func NewHomeHandler(recipes recipe.Service, categories category.Service) *HomeHandler {
	return &HomeHandler{recipes: recipes, categories: categories}
}

// HomeEnvelope wraps the landing page payload.
type HomeEnvelope struct {
	Highlights []domain.Recipe   `json:"highlights"`
	Categories []domain.Category `json:"categories"`
}

func (h *HomeHandler) Get(w http.ResponseWriter, r *http.Request) {
	highlights, err := h.recipes.Highlights(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	categories, err := h.categories.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	// The landing page teases the first few categories; the full list has its
	// own endpoint.
	if len(categories) > 3 {
		categories = categories[:3]
	}
	writeJSON(w, http.StatusOK, HomeEnvelope{Highlights: highlights, Categories: categories})
}
