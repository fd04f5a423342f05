package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/service/auth"
)

// userIDKey is the gin context key holding the authenticated user id.
const userIDKey = "userID"

// Authenticator issues and checks bearer tokens.
type Authenticator interface {
	Login(id, secret string) (auth.Token, error)
	Verify(token string) (string, error)
}

// AuthHandler serves the login endpoint and the bearer middleware.
type AuthHandler struct {
	svc    Authenticator
	logger *zap.Logger
}

// NewAuthHandler constructs the auth HTTP adapter.
func NewAuthHandler(svc Authenticator, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, logger: logger}
}

type loginRequest struct {
	UserID string `json:"userId"`
	Secret string `json:"secret"`
}

// Login exchanges an allow-listed id and secret for a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, badRequest("body", "Invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(c, h.logger, badRequest("userId", "This field is required"))
		return
	}

	token, err := h.svc.Login(req.UserID, req.Secret)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

// RequireUser rejects requests without a valid bearer token and stores the
// token subject for downstream handlers.
func (h *AuthHandler) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeError(c, h.logger, auth.ErrInvalidToken)
			return
		}

		userID, err := h.svc.Verify(strings.TrimSpace(raw))
		if err != nil {
			writeError(c, h.logger, err)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// CurrentUser returns the user id set by RequireUser.
func CurrentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}
