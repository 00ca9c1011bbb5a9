package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/campus-union/voicebox/internal/auth"
	"github.com/campus-union/voicebox/internal/models"
	"github.com/campus-union/voicebox/internal/security"
	"github.com/campus-union/voicebox/internal/store"
)

// AuthHandler handles admin login and token verification.
type AuthHandler struct {
	guard     *auth.Guard
	analytics *store.AnalyticsStore
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(guard *auth.Guard, analytics *store.AnalyticsStore, jwtSecret string, jwtExpiry time.Duration) *AuthHandler {
	return &AuthHandler{guard: guard, analytics: analytics, jwtSecret: jwtSecret, jwtExpiry: jwtExpiry}
}

// loginRequest defines the login body.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an admin and issues a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respondValidation(c, FieldError{Field: "body", Message: "Invalid request body"})
		return
	}

	email := strings.TrimSpace(body.Email)
	password := body.Password
	var fieldErrs []FieldError
	if email == "" {
		fieldErrs = append(fieldErrs, FieldError{Field: "email", Message: "Email is required"})
	}
	if password == "" {
		fieldErrs = append(fieldErrs, FieldError{Field: "password", Message: "Password is required"})
	}
	if len(fieldErrs) > 0 {
		respondValidation(c, fieldErrs...)
		return
	}

	result, errAuth := h.guard.Authenticate(c.Request.Context(), email, password)
	if errAuth != nil {
		switch {
		case errors.Is(errAuth, auth.ErrAccountLocked):
			respondError(c, http.StatusLocked, "Account locked due to too many failed attempts, try again later")
		case errors.Is(errAuth, auth.ErrNotConfigured):
			log.WithError(errAuth).Error("admin login impossible without bootstrap credentials")
			respondError(c, http.StatusInternalServerError, "Server configuration error")
		case errors.Is(errAuth, auth.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, "Invalid credentials")
		default:
			log.WithError(errAuth).Error("admin login failed")
			respondError(c, http.StatusInternalServerError, "Authentication failed")
		}
		return
	}

	admin := result.Admin
	token, errToken := security.GenerateAdminToken(h.jwtSecret, admin.ID, admin.Email, h.jwtExpiry)
	if errToken != nil {
		log.WithError(errToken).Error("failed to sign admin token")
		respondError(c, http.StatusInternalServerError, "Authentication failed")
		return
	}

	if errTrack := h.analytics.IncrementToday(c.Request.Context(), models.MetricAdminLogins); errTrack != nil {
		log.WithError(errTrack).Warn("failed to track admin login")
	}

	respondOK(c, gin.H{
		"token": token,
		"admin": gin.H{
			"id":        admin.ID,
			"email":     admin.Email,
			"lastLogin": admin.LastLogin,
		},
	})
}

// Verify echoes the claims of a valid bearer token.
func (h *AuthHandler) Verify(c *gin.Context) {
	claims := adminClaims(c)
	if claims == nil {
		respondError(c, http.StatusUnauthorized, "Invalid token")
		return
	}
	respondOK(c, gin.H{
		"adminId": claims.AdminID,
		"email":   claims.Email,
	})
}
