package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ashif1996/recipe-nest/internal/application/contact"
	"github.com/ashif1996/recipe-nest/internal/domain"
	"github.com/ashif1996/recipe-nest/internal/pkg/validate"
)

// ContactHandler handles contact form submissions.
type ContactHandler struct {
	svc contact.Service
}

func NewContactHandler(svc contact.Service) *ContactHandler { return &ContactHandler{svc: svc} }

func (h *ContactHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Send(r.Context(), req); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "message sent, we will get back to you soon"})
}
