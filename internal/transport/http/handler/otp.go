package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ashif1996/recipe-nest/internal/application/otp"
	"github.com/ashif1996/recipe-nest/internal/domain"
	"github.com/ashif1996/recipe-nest/internal/pkg/validate"
)

// OTPHandler handles verification-code issuance and checking during signup.
type OTPHandler struct {
	svc otp.Service
}

func NewOTPHandler(svc otp.Service) *OTPHandler { return &OTPHandler{svc: svc} }

type sendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Issue(r.Context(), req.Email); err != nil {
		// A single generic message whether storage or delivery failed.
		writeError(w, http.StatusInternalServerError, "failed to send verification code")
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP sent successfully."})
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, err := h.svc.Verify(r.Context(), req.Email, req.OTP)
	if err != nil {
		httpError(w, err)
		return
	}
	switch status {
	case domain.OTPVerified:
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP verified successfully."})
	case domain.OTPInvalid:
		writeError(w, http.StatusUnauthorized, "Incorrect OTP. Please try again.")
	case domain.OTPExpired:
		writeError(w, http.StatusGone, "OTP has expired. Please request a new one.")
	default: // domain.OTPNotFound
		writeError(w, http.StatusNotFound, "No OTP found. Please request a new one.")
	}
}
