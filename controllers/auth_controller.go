package controllers

import (
	"errors"
	"net/http"

	"github.com/fixhub/fixhub-backend/apperrors"
	"github.com/fixhub/fixhub-backend/middleware"
	"github.com/fixhub/fixhub-backend/models"
	"github.com/fixhub/fixhub-backend/repository"
	"github.com/fixhub/fixhub-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	Users  repository.UserRepository
	Tokens *services.TokenService
	Logger *zap.Logger
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Register creates a customer account. Staff roles are only assigned by an
// administrator afterwards.
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	if _, err := ac.Users.FindByEmail(c.Request.Context(), req.Email); err == nil {
		apperrors.Respond(c, apperrors.ErrConflict)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		ac.Logger.Error("Failed to hash password", zap.Error(err))
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	user := &models.User{
		Email:    req.Email,
		Password: string(hashed),
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     models.RoleCustomer,
	}
	if err := ac.Users.Create(c.Request.Context(), user); err != nil {
		ac.Logger.Error("Failed to create user", zap.Error(err))
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email})
}

// Login authenticates a user and issues access and refresh tokens.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	user, err := ac.Users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperrors.Respond(c, apperrors.ErrInvalidCredentials)
			return
		}
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		apperrors.Respond(c, apperrors.ErrInvalidCredentials)
		return
	}

	access, err := ac.Tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		ac.Logger.Error("Failed to sign access token", zap.Error(err))
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	refresh, tokenID, expiresAt, err := ac.Tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		ac.Logger.Error("Failed to sign refresh token", zap.Error(err))
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}
	if err := ac.Users.SaveRefreshToken(c.Request.Context(), &models.RefreshToken{
		TokenID:   tokenID,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}); err != nil {
		ac.Logger.Error("Failed to persist refresh token", zap.Error(err))
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"role":          user.Role,
	})
}

// Refresh rotates a refresh token: the old token is revoked and a new pair
// is issued.
func (ac *AuthController) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	userID, tokenID, err := ac.Tokens.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrInvalidToken)
		return
	}

	stored, err := ac.Users.FindRefreshToken(c.Request.Context(), tokenID)
	if err != nil || stored.Revoked || stored.UserID != userID {
		apperrors.Respond(c, apperrors.ErrInvalidToken)
		return
	}

	user, err := ac.Users.FindByID(c.Request.Context(), userID)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrInvalidToken)
		return
	}

	if err := ac.Users.RevokeRefreshToken(c.Request.Context(), tokenID); err != nil {
		ac.Logger.Error("Failed to revoke refresh token", zap.Error(err))
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	access, err := ac.Tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}
	refresh, newTokenID, expiresAt, err := ac.Tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}
	if err := ac.Users.SaveRefreshToken(c.Request.Context(), &models.RefreshToken{
		TokenID:   newTokenID,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}); err != nil {
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Me returns the authenticated user's profile.
func (ac *AuthController) Me(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	user, err := ac.Users.FindByID(c.Request.Context(), principal.UserID)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"phone": user.Phone,
		"role":  user.Role,
	})
}
