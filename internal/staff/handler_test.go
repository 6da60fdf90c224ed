package staff

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cornerstone-fellowship/backend/config"
)

func newLoginRouter(t *testing.T) (*gin.Engine, *TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	credential := NewCredential(config.StaffConfig{Password: "staff-pw"})
	tokens := NewTokenService("jwt-secret", 12)
	handler := NewHandler(credential, tokens, nil)

	router := gin.New()
	router.POST("/loginStaff", handler.Login)
	return router, tokens
}

func postLogin(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/loginStaff", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestLoginIssuesValidToken(t *testing.T) {
	router, tokens := newLoginRouter(t)

	w := postLogin(router, `{"staffName":"Sam","password":"staff-pw"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			StaffName string `json:"staffName"`
			Token     string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Sam", body.Data.StaffName)

	claims, err := tokens.Validate(body.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, "Sam", claims.StaffName)
}

func TestLoginWrongPassword(t *testing.T) {
	router, _ := newLoginRouter(t)

	w := postLogin(router, `{"staffName":"Sam","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginMissingStaffName(t *testing.T) {
	router, _ := newLoginRouter(t)

	w := postLogin(router, `{"password":"staff-pw"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTokenValidateRejectsTampering(t *testing.T) {
	tokens := NewTokenService("jwt-secret", 12)
	token, err := tokens.Sign("Sam")
	require.NoError(t, err)

	_, err = NewTokenService("other-secret", 12).Validate(token)
	assert.Error(t, err)

	_, err = tokens.Validate(token + "x")
	assert.Error(t, err)
}

func TestCredentialMatches(t *testing.T) {
	plain := NewCredential(config.StaffConfig{Password: "staff-pw"})
	assert.True(t, plain.Matches("staff-pw"))
	assert.False(t, plain.Matches("wrong"))
	assert.False(t, plain.Matches(""))

	// bcrypt hash of "staff-pw", cost 10
	hashed := NewCredential(config.StaffConfig{
		PasswordHash: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
	})
	assert.False(t, hashed.Matches("wrong"))

	empty := NewCredential(config.StaffConfig{})
	assert.False(t, empty.Matches(""), "an unset credential must reject everything")
}
