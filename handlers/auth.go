package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harryzhoudev/portfolio-api/internal/admin"
	"github.com/harryzhoudev/portfolio-api/internal/sessions"
	"github.com/harryzhoudev/portfolio-api/internal/tokens"
	"github.com/harryzhoudev/portfolio-api/pkg/logger"
	"github.com/harryzhoudev/portfolio-api/pkg/metrics"
	"github.com/harryzhoudev/portfolio-api/pkg/middleware"
)

// LoginRequest is the admin login body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenConfig controls how access tokens are minted.
type TokenConfig struct {
	Secret    string
	Issuer    string
	AccessTTL time.Duration
}

// AuthHandler holds dependencies
type AuthHandler struct {
	admin       *admin.Authenticator
	sessionsSvc *sessions.Service
	blacklist   *sessions.Blacklist
	cfg         TokenConfig
}

func NewAuthHandler(a *admin.Authenticator, s *sessions.Service, bl *sessions.Blacklist, cfg TokenConfig) *AuthHandler {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	return &AuthHandler{admin: a, sessionsSvc: s, blacklist: bl, cfg: cfg}
}

// Register routes under /auth. loginLimit, when non-nil, guards /auth/login.
func (h *AuthHandler) Register(rg *gin.RouterGroup, loginLimit gin.HandlerFunc) {
	a := rg.Group("/auth")
	if loginLimit != nil {
		a.POST("/login", loginLimit, h.Login)
	} else {
		a.POST("/login", h.Login)
	}
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
}

func (h *AuthHandler) issue(c *gin.Context, subject, refresh string) {
	access, err := tokens.GenerateAccessToken(h.cfg.Secret, h.cfg.Issuer, subject, h.cfg.AccessTTL)
	if err != nil {
		logger.Op("auth.issue").Errorf("signing access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":        access,
		"refreshToken": refresh,
		"expiresIn":    int(h.cfg.AccessTTL.Seconds()),
	})
}

// Login checks the admin credential and returns an access token plus a refresh token.
func (h *AuthHandler) Login(c *gin.Context) {
	log := logger.Op("auth.login")
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	if err := h.admin.Authenticate(req.Email, req.Password); err != nil {
		if errors.Is(err, admin.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "login is not configured"})
			return
		}
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		log.Warnf("rejected login from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	metrics.LoginAttempts.WithLabelValues("ok").Inc()

	refresh, err := h.sessionsSvc.CreateSession(c.Request.Context(), h.admin.Email())
	if err != nil {
		log.Errorf("failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	log.Infof("admin logged in from %s", c.ClientIP())
	h.issue(c, h.admin.Email(), refresh)
}

// Refresh exchanges a refresh token for a new access token. The refresh token is rotated.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
		return
	}
	sess, next, err := h.sessionsSvc.Rotate(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, sessions.ErrInvalidRefresh) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}
		logger.Op("auth.refresh").Errorf("rotating session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}
	h.issue(c, sess.Subject, next)
}

// Logout removes the refresh session and blacklists the presented access token
// for the rest of its lifetime.
func (h *AuthHandler) Logout(c *gin.Context) {
	log := logger.Op("auth.logout")
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
		return
	}

	if at, ok := middleware.BearerToken(c.GetHeader("Authorization")); ok {
		// only tokens we signed carry an expiry we trust
		if claims, err := tokens.ParseAccessToken(h.cfg.Secret, h.cfg.Issuer, at); err == nil {
			if err := h.blacklist.Revoke(c.Request.Context(), at, time.Until(claims.ExpiresAt.Time)); err != nil {
				log.Errorf("blacklisting access token: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to blacklist access token"})
				return
			}
		}
	}

	if err := h.sessionsSvc.DeleteRefresh(c.Request.Context(), req.RefreshToken); err != nil {
		log.Errorf("removing session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
