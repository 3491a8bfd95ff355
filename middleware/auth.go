package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-floor-api/config"
)

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Scope string `json:"scope"`
	Role  string `json:"role"`
}

// Validate satisfies validator.CustomClaims. Role and scope are checked by
// the handlers that need them.
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// HasScope checks whether our claims have a specific scope.
func (c CustomClaims) HasScope(expectedScope string) bool {
	result := strings.Split(c.Scope, " ")
	for i := range result {
		if result[i] == expectedScope {
			return true
		}
	}

	return false
}

// NewValidator builds the token validator. Auth0 (RS256 over JWKS) is used when
// AUTH0_DOMAIN is set, otherwise tokens are HS256 signed with JWT_SECRET.
func NewValidator(cfg *config.Config) (*validator.Validator, error) {
	customClaims := validator.WithCustomClaims(
		func() validator.CustomClaims {
			return &CustomClaims{}
		},
	)
	clockSkew := validator.WithAllowedClockSkew(time.Minute)

	if cfg.Auth0Domain != "" {
		issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
		if err != nil {
			return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
		}
		provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)
		return validator.New(
			provider.KeyFunc,
			validator.RS256,
			issuerURL.String(),
			[]string{cfg.Auth0Audience},
			customClaims,
			clockSkew,
		)
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("either AUTH0_DOMAIN or JWT_SECRET must be set")
	}
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}
	return validator.New(
		keyFunc,
		validator.HS256,
		cfg.JWTIssuer,
		[]string{cfg.JWTAudience},
		customClaims,
		clockSkew,
	)
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken(cfg *config.Config) (gin.HandlerFunc, error) {
	jwtValidator, err := NewValidator(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		slog.Warn("encountered error while validating JWT",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`)); writeErr != nil {
			slog.Error("failed to write error response", slog.Any("error", writeErr))
		}
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		passed := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			// Store the validated claims in Gin context
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)

			c.Set("user_id", token.RegisteredClaims.Subject)
			c.Set("validated_claims", token)
			passed = true

			c.Next()
		}

		// Use the JWT middleware to check the token
		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}, nil
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}

	return userIDStr, nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get("validated_claims")
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// GetRole returns the role claim of the token, or "" when the token carries none
func GetRole(c *gin.Context) string {
	claims, err := GetClaims(c)
	if err != nil {
		return ""
	}
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok {
		return custom.Role
	}
	return ""
}

// RequireScope is a middleware that checks if the token has a specific scope
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := GetClaims(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_CLAIMS",
					"message": "Could not retrieve token claims",
				},
			})
			c.Abort()
			return
		}

		customClaims, ok := claims.CustomClaims.(*CustomClaims)
		if !ok || !customClaims.HasScope(scope) {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INSUFFICIENT_SCOPE",
					"message": "Insufficient permissions to access this resource",
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
