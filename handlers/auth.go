package handlers

import (
	"net/http"

	"smartparking/models"
	"smartparking/services/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	UserService user.UserService
}

// RegisterHandler handles POST /api/auth/register.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	resp, err := h.UserService.Register(req)
	if err != nil {
		getLogger(c).Info("Registration refused", zap.String("email", req.Email), zap.Error(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// LoginHandler handles POST /api/auth/login.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	resp, err := h.UserService.Login(req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateFCMTokenHandler handles PUT /api/users/fcm-token.
func (h *AuthHandler) UpdateFCMTokenHandler(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var input struct {
		Token string `json:"fcmToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if err := h.UserService.UpdateFCMToken(userID, input.Token); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "FCM token updated"})
}

// MeHandler handles GET /api/users/me.
func (h *AuthHandler) MeHandler(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	u, err := h.UserService.GetUserByID(userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
