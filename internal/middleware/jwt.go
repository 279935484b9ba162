package middleware

import (
	"net/http"
	"strconv"
	"time"

	"propertyms/internal/common"
	"propertyms/internal/models"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTClaims is the payload issued by the auth service.
type JWTClaims struct {
	UserID int64       `json:"id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuth verifies the bearer token and places the caller's identity on the
// request context.
func JWTAuth(secret string) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(attachIdentity(next))
	}
}

func attachIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}
		claims, ok := token.Claims.(*JWTClaims)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
		}

		userID := claims.UserID
		if userID == 0 && claims.Subject != "" {
			// tokens from older clients carry the id in sub
			if id, err := strconv.ParseInt(claims.Subject, 10, 64); err == nil {
				userID = id
			}
		}
		if userID <= 0 || !claims.Role.IsValid() {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing user in token")
		}

		ctx := common.WithIdentity(c.Request().Context(), common.Identity{UserID: userID, Role: claims.Role})
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// IssueToken signs an HS256 token for a user.
func IssueToken(secret string, userID int64, role models.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
