package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"geolens/internal/db"
	"geolens/internal/models"
	"geolens/internal/policy"
	"geolens/internal/utils"
	"geolens/internal/utils/logger"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

var log = logger.New("auth_middleware")

const principalKey = "principal"

type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret}
}

// Optional resolves a principal from the Authorization header when one is
// present and valid, and degrades to the anonymous principal otherwise.
// Read endpoints run behind this: a bad or expired token browses like a
// logged-out visitor instead of failing the request.
func (m *AuthMiddleware) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := m.resolvePrincipal(c)
			if err != nil {
				principal = policy.Anonymous()
			}
			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// Required rejects the request with 401 unless a valid principal can be
// resolved.
func (m *AuthMiddleware) Required() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := m.resolvePrincipal(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

func (m *AuthMiddleware) resolvePrincipal(c echo.Context) (policy.Principal, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return policy.Anonymous(), fmt.Errorf("missing authorization header")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return policy.Anonymous(), fmt.Errorf("invalid authorization header format")
	}

	return m.validateJWT(c, tokenParts[1])
}

func (m *AuthMiddleware) validateJWT(c echo.Context, tokenString string) (policy.Principal, error) {
	claims := &utils.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.jwtSecret), nil
	})

	if err != nil || !token.Valid {
		log.Error("Error parsing JWT token: %v", err)
		return policy.Anonymous(), fmt.Errorf("invalid token")
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return policy.Anonymous(), fmt.Errorf("token has expired")
	}

	// Verify auth transaction
	transaction := &models.AuthTransaction{}
	if err := db.DB.Where("user_id = ? AND token = ?",
		claims.UserID, tokenString).First(transaction).Error; err != nil {
		return policy.Anonymous(), fmt.Errorf("auth transaction not found")
	}

	// Token claims carry the role and tier at issuance time; re-read the user
	// so a plan change takes effect without re-login.
	user := &models.User{}
	if err := db.DB.Where("id = ?", claims.UserID).First(user).Error; err != nil {
		return policy.Anonymous(), fmt.Errorf("user not found")
	}

	principal := policy.Principal{
		ID:       user.ID,
		Email:    user.Email,
		Role:     user.Role,
		PlanTier: user.PlanTier,
	}

	if user.Role == models.UserRoleAnalyst {
		if tenant, err := models.GetTenantByOwner(user.ID, db.DB); err == nil {
			principal.OwnedTenantID = tenant.ID
		}
	}

	return principal, nil
}

// GetPrincipal returns the principal set by the auth middleware, or the
// anonymous principal if the route was not wrapped.
func GetPrincipal(c echo.Context) policy.Principal {
	if p, ok := c.Get(principalKey).(policy.Principal); ok {
		return p
	}
	return policy.Anonymous()
}
