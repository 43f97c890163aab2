package webserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/openmallhq/openmall/internal/domain"
)

// TokenClaims is the bearer credential payload: identity plus the admin
// role claim checked by the admin route group.
type TokenClaims struct {
	UserID  int64  `json:"uid,string"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"adm"`
	jwt.RegisteredClaims
}

// IssueToken signs a bearer token for a user.
func IssueToken(user *domain.User) (string, error) {
	cfg := server.cfg
	claims := TokenClaims{
		UserID:  user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(cfg.Web.JwtExpire) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Web.Secret))
}

func jwtMiddleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(TokenClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid credential", nil)
		},
	})
}

// CurrentClaims returns the verified claims of the request, nil on public
// routes.
func CurrentClaims(c echo.Context) *TokenClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

// ParseBearer verifies the Authorization header if present. Public routes
// use it to distinguish anonymous from signed-in callers without rejecting
// either; a missing or invalid token yields nil.
func ParseBearer(c echo.Context) *TokenClaims {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return nil
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	claims := new(TokenClaims)
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(server.cfg.Web.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil
	}
	return claims
}

// adminOnly rejects requests whose token lacks the admin claim.
func adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := CurrentClaims(c)
		if claims == nil || !claims.IsAdmin {
			return Fail(c, http.StatusForbidden, "FORBIDDEN", "Administrator role required", nil)
		}
		return next(c)
	}
}
