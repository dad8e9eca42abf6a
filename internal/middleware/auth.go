package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/core"
	"github.com/fatbomb/MealManagement/internal/models"
)

// Context keys set by VerifyToken.
const (
	UserIDKey   = "userID"
	IdentityKey = "identity"
)

// adminClaim is the Firebase custom claim that grants administrator rights.
const adminClaim = "admin"

// ErrorResponse mirrors api.ErrorResponse to avoid an import cycle.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TokenVerifier verifies Firebase ID tokens. *auth.Client implements it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// UserLookup resolves the stored profile of an authenticated user.
type UserLookup interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// RosterLookup reads the role roster, which names the mess managers of each month.
type RosterLookup interface {
	GetRoster(ctx context.Context) (*models.RoleAssignments, error)
}

// AuthMiddleware provides Gin middleware for Firebase token authentication.
type AuthMiddleware struct {
	verifier TokenVerifier
	users    UserLookup
	roster   RosterLookup
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance. users and roster may be nil.
func NewAuthMiddleware(verifier TokenVerifier, users UserLookup, roster RosterLookup, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil {
		panic("AuthMiddleware requires a token verifier")
	}
	return &AuthMiddleware{verifier: verifier, users: users, roster: roster, logger: logger}
}

// VerifyToken checks the bearer token and stores the caller's models.Identity in the context.
// The mess manager flag comes from the user's profile, which may not exist yet on first sign-in,
// and the managed months from the roster.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		token, err := m.verifier.VerifyIDToken(c.Request.Context(), parts[1])
		if err != nil {
			m.logger.Warn("Error verifying Firebase ID token", zap.Error(err), zap.String("request_id", RequestIDFrom(c)))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		identity := models.Identity{UserID: token.UID}
		if email, ok := token.Claims["email"].(string); ok {
			identity.Email = email
		}
		if name, ok := token.Claims["name"].(string); ok {
			identity.DisplayName = name
		}
		if isAdmin, ok := token.Claims[adminClaim].(bool); ok {
			identity.IsAdmin = isAdmin
		}

		if m.users != nil {
			user, err := m.users.GetByID(c.Request.Context(), token.UID)
			switch {
			case err == nil:
				identity.IsMessManager = user.IsMessManager
				if identity.DisplayName == "" {
					identity.DisplayName = user.Name
				}
			case errors.Is(err, core.ErrUserNotFound):
			default:
				m.logger.Error("Failed to load caller profile", zap.String("userID", token.UID), zap.Error(err))
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Could not load user profile"})
				return
			}
		}
		if m.roster != nil {
			roles, err := m.roster.GetRoster(c.Request.Context())
			if err != nil {
				m.logger.Error("Failed to load role roster", zap.String("userID", token.UID), zap.Error(err))
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Could not load role roster"})
				return
			}
			identity.ManagedMonths = roles.ManagedMonths(token.UID)
		}
		if identity.DisplayName == "" {
			identity.DisplayName = identity.Email
		}

		c.Set(UserIDKey, identity.UserID)
		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin claim. It must run after VerifyToken.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok || !identity.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Administrator access required"})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity stored by VerifyToken.
func IdentityFrom(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}
