package checkin

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/backend/internal/apperr"
	"github.com/cornerstone-fellowship/backend/pkg/response"
)

// RedeemRequest is the body for POST /checkinQRcode.
type RedeemRequest struct {
	StaffName      string `json:"staffName"`
	Password       string `json:"password"`
	EncryptedEmail string `json:"encryptedEmail"`
}

// Handler handles the check-in HTTP endpoint.
type Handler struct {
	coordinator *Coordinator
	logger      *zap.Logger
}

// NewHandler creates a check-in handler.
func NewHandler(coordinator *Coordinator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{coordinator: coordinator, logger: logger}
}

// Redeem handles POST /checkinQRcode.
func (h *Handler) Redeem(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.NewMissingFieldError("staffName, password and encryptedEmail"))
		return
	}
	if req.EncryptedEmail == "" {
		response.Error(c, apperr.NewMissingFieldError("encryptedEmail"))
		return
	}

	outcome, err := h.coordinator.Redeem(c.Request.Context(), req.EncryptedEmail, req.StaffName, req.Password)
	if err != nil {
		h.logger.Warn("redemption failed", zap.Error(err))
		response.Error(c, err)
		return
	}

	message := fmt.Sprintf("%s checked in by %s", outcome.Name, outcome.StaffName)
	if outcome.AlreadyRedeemed {
		message = fmt.Sprintf("%s was already checked in by %s at %s",
			outcome.Name, outcome.StaffName, outcome.CheckedInAt.Format("15:04:05"))
	}
	response.OK(c, gin.H{"message": message, "outcome": outcome})
}

// Status handles GET /checkinStatus/:email. The route sits behind the staff
// session middleware, so no per-request password is needed.
func (h *Handler) Status(c *gin.Context) {
	outcome, err := h.coordinator.Status(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"checkedIn": outcome.AlreadyRedeemed, "outcome": outcome})
}
