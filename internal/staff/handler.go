package staff

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/backend/internal/apperr"
	"github.com/cornerstone-fellowship/backend/pkg/response"
)

// LoginRequest is the body for POST /loginStaff.
type LoginRequest struct {
	StaffName string `json:"staffName"`
	Password  string `json:"password"`
}

// Handler handles staff login.
type Handler struct {
	credential *Credential
	tokens     *TokenService
	logger     *zap.Logger
}

// NewHandler creates a staff handler.
func NewHandler(credential *Credential, tokens *TokenService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{credential: credential, tokens: tokens, logger: logger}
}

// Login handles POST /loginStaff. The session token lets the scanner app
// keep a staff member signed in; the check-in endpoint itself still takes
// the shared password per request.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.StaffName == "" {
		response.Error(c, apperr.NewMissingFieldError("staffName and password"))
		return
	}
	if !h.credential.Matches(req.Password) {
		h.logger.Warn("staff login rejected", zap.String("staff", req.StaffName))
		response.Error(c, apperr.NewUnauthorizedError("invalid staff password"))
		return
	}

	token, err := h.tokens.Sign(req.StaffName)
	if err != nil {
		h.logger.Error("sign session token failed", zap.Error(err))
		response.Error(c, apperr.NewUnauthorizedError("failed to create session"))
		return
	}

	response.OK(c, gin.H{"staffName": req.StaffName, "token": token})
}
