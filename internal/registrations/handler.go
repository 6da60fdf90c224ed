package registrations

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/backend/internal/models"
	"github.com/cornerstone-fellowship/backend/internal/notify"
	"github.com/cornerstone-fellowship/backend/pkg/response"
)

// SaveRequest is the registrant-facing payload for POST /saveOrUpdate.
// Attendee and t-shirt lines beyond the sheet capacity are dropped.
type SaveRequest struct {
	Email     string               `json:"email"`
	Attendees []models.Attendee    `json:"attendees"`
	Mobile    string               `json:"mobile"`
	TShirts   []models.TShirtOrder `json:"tshirts"`
	TotalFee  string               `json:"totalFee"`
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	svc        *Service
	dispatcher notify.Dispatcher
	logger     *zap.Logger
}

func NewHandler(svc *Service, dispatcher notify.Dispatcher, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, dispatcher: dispatcher, logger: logger}
}

// SaveOrUpdate handles POST /saveOrUpdate. A confirmation email is dispatched
// after a successful save; delivery trouble never fails the request.
func (h *Handler) SaveOrUpdate(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "INVALID_REQUEST", "invalid request body")
		return
	}
	if len(req.Attendees) > models.MaxAttendees {
		req.Attendees = req.Attendees[:models.MaxAttendees]
	}
	if len(req.TShirts) > models.MaxTShirtLines {
		req.TShirts = req.TShirts[:models.MaxTShirtLines]
	}

	reg, created, err := h.svc.Upsert(c.Request.Context(), Payload{
		Email:     req.Email,
		Attendees: req.Attendees,
		Mobile:    req.Mobile,
		TShirts:   req.TShirts,
		TotalFee:  req.TotalFee,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.dispatcher.Dispatch(c.Request.Context(), reg.Email, created)

	body := gin.H{
		"created": created,
		"record":  reg,
	}
	if created {
		response.Created(c, body)
		return
	}
	response.OK(c, body)
}
