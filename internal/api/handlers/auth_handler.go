// internal/api/handlers/auth_handler.go
package handlers

import (
	"net/http"

	"facility-ops-api-server/internal/api/response"
	"facility-ops-api-server/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Login successful", result)
}

// Me returns the profile of the caller.
func (h *AuthHandler) Me(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	user, err := h.Auth.Me(c.Request.Context(), a)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}
