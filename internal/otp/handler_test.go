package otp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cornerstone-fellowship/backend/internal/models"
	"github.com/cornerstone-fellowship/backend/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.MemoryStore, *string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rows := store.NewMemoryStore()
	sentCode := new(string)
	sender := &mockSender{sendCode: func(_ context.Context, _, code string) error {
		*sentCode = code
		return nil
	}}
	svc := NewService(NewMemoryStore(), sender, 0, nil, nil)
	handler := NewHandler(svc, rows, nil)

	router := gin.New()
	router.POST("/sendOTP", handler.SendOTP)
	router.POST("/verifyOTP", handler.VerifyOTP)
	return router, rows, sentCode
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestSendOTPMissingEmail(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := postJSON(router, "/sendOTP", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "MISSING_FIELD", body["code"])
}

func TestSendOTPThenVerify(t *testing.T) {
	router, rows, sentCode := newTestRouter(t)
	rows.SetSystemOpen(true)

	w := postJSON(router, "/sendOTP", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, *sentCode, 6)

	// No registration yet: the client learns the system state instead.
	w = postJSON(router, "/verifyOTP", fmt.Sprintf(`{"email":"a@x.com","otp":"%s"}`, *sentCode))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			SystemOpen *bool  `json:"systemOpen"`
			Email      string `json:"email"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.NotNil(t, body.Data.SystemOpen)
	assert.True(t, *body.Data.SystemOpen)
	assert.Equal(t, "a@x.com", body.Data.Email)
}

func TestVerifyOTPAcceptsNumericCode(t *testing.T) {
	router, _, sentCode := newTestRouter(t)

	w := postJSON(router, "/sendOTP", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// Legacy clients send the code as a JSON number.
	w = postJSON(router, "/verifyOTP", fmt.Sprintf(`{"email":"a@x.com","otp":%s}`, *sentCode))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVerifyOTPWrongCode(t *testing.T) {
	router, _, sentCode := newTestRouter(t)

	w := postJSON(router, "/sendOTP", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, w.Code)

	wrong := "000000"
	if wrong == *sentCode {
		wrong = "000001"
	}
	w = postJSON(router, "/verifyOTP", fmt.Sprintf(`{"email":"a@x.com","otp":"%s"}`, wrong))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_CODE", body["code"])
}

func TestVerifyOTPReturnsExistingRecord(t *testing.T) {
	router, rows, sentCode := newTestRouter(t)
	require.NoError(t, rows.Save(context.Background(), &models.Registration{
		Email:  "a@x.com",
		Paid:   models.PaidYes,
		Mobile: "555-0101",
	}))

	w := postJSON(router, "/sendOTP", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(router, "/verifyOTP", fmt.Sprintf(`{"email":"a@x.com","otp":"%s"}`, *sentCode))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Record *models.Registration `json:"record"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Data.Record)
	assert.Equal(t, "555-0101", body.Data.Record.Mobile)
	assert.Equal(t, models.PaidYes, body.Data.Record.Paid)
}
