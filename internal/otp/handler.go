package otp

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/backend/internal/apperr"
	"github.com/cornerstone-fellowship/backend/internal/store"
	"github.com/cornerstone-fellowship/backend/pkg/response"
)

// SendOTPRequest is the body for POST /sendOTP.
type SendOTPRequest struct {
	Email string `json:"email"`
}

// VerifyOTPRequest is the body for POST /verifyOTP. The code is accepted as
// either a JSON string or number; legacy clients send both.
type VerifyOTPRequest struct {
	Email string      `json:"email"`
	OTP   interface{} `json:"otp"`
}

// Handler handles the OTP HTTP endpoints.
type Handler struct {
	svc    *Service
	rows   store.RowStore
	logger *zap.Logger
}

// NewHandler creates an OTP handler.
func NewHandler(svc *Service, rows store.RowStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, rows: rows, logger: logger}
}

// SendOTP handles POST /sendOTP.
func (h *Handler) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		response.Error(c, apperr.NewMissingFieldError("email"))
		return
	}

	if err := h.svc.Issue(c.Request.Context(), req.Email); err != nil {
		h.logger.Error("send otp failed", zap.String("email", req.Email), zap.Error(err))
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "OTP sent to your email"})
}

// VerifyOTP handles POST /verifyOTP. On success it also resolves the
// registration record, so the client learns in one round trip whether this
// email has registered before and whether the system accepts new entries.
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.NewMissingFieldError("email"))
		return
	}
	code := ""
	if req.OTP != nil {
		code = fmt.Sprint(req.OTP)
	}

	if err := h.svc.Verify(c.Request.Context(), req.Email, code); err != nil {
		response.Error(c, err)
		return
	}

	reg, err := h.rows.Get(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Error("record lookup failed", zap.String("email", req.Email), zap.Error(err))
			response.Error(c, apperr.NewStoreUnavailableError("failed to look up registration", err))
			return
		}
		open, err := h.rows.SystemOpen(c.Request.Context())
		if err != nil {
			h.logger.Error("control flag read failed", zap.Error(err))
			response.Error(c, apperr.NewStoreUnavailableError("failed to read system state", err))
			return
		}
		response.OK(c, gin.H{"systemOpen": open, "email": req.Email})
		return
	}

	response.OK(c, gin.H{"record": reg})
}
