package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ashif1996/recipe-nest/internal/application/recipe"
	"github.com/ashif1996/recipe-nest/internal/domain"
	"github.com/ashif1996/recipe-nest/internal/pkg/validate"
	"github.com/ashif1996/recipe-nest/internal/transport/http/middleware"
)

// maxMultipartMem is the in-memory buffer for multipart parsing; larger
// file parts spill to disk.
const maxMultipartMem = 8 << 20

// RecipeHandler handles catalogue browsing and owner-scoped recipe writes.
type RecipeHandler struct {
	svc recipe.Service
}

func NewRecipeHandler(svc recipe.Service) *RecipeHandler { return &RecipeHandler{svc: svc} }

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	res, err := h.svc.List(r.Context(), recipe.ListParams{
		CategoryID: q.Get("category"),
		Search:     q.Get("search"),
		Sort:       q.Get("sort"),
		Page:       page,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RecipeDetailEnvelope wraps the detail page payload.
type RecipeDetailEnvelope struct {
	Recipe  *domain.Recipe  `json:"recipe"`
	Similar []domain.Recipe `json:"similar"`
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, similar, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RecipeDetailEnvelope{Recipe: rec, Similar: similar})
}

func (h *RecipeHandler) Highlights(w http.ResponseWriter, r *http.Request) {
	highlights, err := h.svc.Highlights(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, highlights)
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateRecipeRequest
	img, err := parseMultipart(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := h.svc.Create(r.Context(), claims.UserID, req, img)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateRecipeRequest
	img, err := parseMultipart(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := h.svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "id"), req, img)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// parseMultipart decodes the "data" JSON form field into dst and returns the
// optional "image" file part. Callers enforce whether the image is required.
func parseMultipart(r *http.Request, dst interface{}) (*domain.ImageUpload, error) {
	if err := r.ParseMultipartForm(maxMultipartMem); err != nil {
		return nil, errors.New("invalid multipart form")
	}
	data := r.FormValue("data")
	if data == "" {
		return nil, errors.New("missing data field")
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		return nil, errors.New("invalid data field")
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, errors.New("invalid image part")
	}
	return &domain.ImageUpload{
		Body:        file,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}, nil
}
