package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daffodils/florist-api/internal/dto"
	"github.com/daffodils/florist-api/internal/middleware"
	"github.com/daffodils/florist-api/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingIdentifier):
			respondError(c, http.StatusBadRequest, "Email or username is required.")
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, "Invalid credentials.")
		default:
			respondError(c, http.StatusInternalServerError, "Login failed.")
		}
		return
	}
	respondMessage(c, http.StatusOK, "Login successful.", resp)
}

func (h *AuthHandler) Me(c *gin.Context) {
	admin := middleware.GetAdmin(c)
	respondOK(c, http.StatusOK, dto.ToAdminResponse(admin))
}

// Logout is stateless; tokens stay valid until expiry and the client simply
// discards its copy.
func (h *AuthHandler) Logout(c *gin.Context) {
	respondMessage(c, http.StatusOK, "Logged out successfully.", nil)
}
