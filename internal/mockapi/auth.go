package mockapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	appErrors "github.com/hirepath/admin-console/pkg/errors"
)

// contextAdminKey is the gin context key storing the authenticated claims.
const contextAdminKey = "currentAdmin"

// adminClaims is the access token payload.
type adminClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// tokenIssuer signs and validates HS256 access tokens.
type tokenIssuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func newTokenIssuer(secret string, expiry time.Duration, now func() time.Time) *tokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &tokenIssuer{secret: []byte(secret), expiry: expiry, now: now}
}

func (t *tokenIssuer) issue(admin *adminAccount) (string, error) {
	issuedAt := t.now().UTC()
	claims := &adminClaims{
		Name: admin.FirstName + " " + admin.LastName,
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(t.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return signed, nil
}

func (t *tokenIssuer) validate(tokenString string) (*adminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &adminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	claims, ok := token.Claims.(*adminClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// authGuard blocks data routes without a valid bearer token.
func authGuard(issuer *tokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			failJSON(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			failJSON(c, http.StatusUnauthorized, "invalid authorization header")
			return
		}
		claims, err := issuer.validate(parts[1])
		if err != nil {
			failJSON(c, http.StatusUnauthorized, "invalid token")
			return
		}
		c.Set(contextAdminKey, claims)
		c.Next()
	}
}

// failJSON aborts with the flat rejection envelope the client expects.
func failJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
