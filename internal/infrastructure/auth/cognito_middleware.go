package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set for authenticated requests.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

const keyTTL = 15 * time.Minute

// poolClaims are the Cognito claims the actor is built from. Both ID and
// access tokens are accepted; only ID tokens carry email.
type poolClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	TokenUse string `json:"token_use"`
}

type CognitoMiddleware struct {
	issuer string
	keys   *keySet
	parser *jwt.Parser
}

func NewCognitoMiddleware(userPoolID, region string) *CognitoMiddleware {
	issuer := "https://cognito-idp." + region + ".amazonaws.com/" + userPoolID
	return NewJWKSMiddleware(issuer, issuer+"/.well-known/jwks.json")
}

// NewJWKSMiddleware validates RS256 tokens from issuer against the key set
// served at jwksURL.
func NewJWKSMiddleware(issuer, jwksURL string) *CognitoMiddleware {
	return &CognitoMiddleware{
		issuer: issuer,
		keys:   newKeySet(jwksURL, keyTTL),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

func (m *CognitoMiddleware) Handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return reject(c, "missing bearer token")
		}
		claims, err := m.verify(c, raw)
		if err != nil {
			return reject(c, "invalid token")
		}
		c.Set(ContextUserID, claims.Subject)
		if claims.Email != "" {
			c.Set(ContextEmail, claims.Email)
		}
		return next(c)
	}
}

func (m *CognitoMiddleware) verify(c echo.Context, raw string) (*poolClaims, error) {
	ctx := c.Request().Context()
	claims := &poolClaims{}
	_, err := m.parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token header has no kid")
		}
		return m.keys.key(ctx, kid)
	})
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	if claims.TokenUse != "id" && claims.TokenUse != "access" {
		return nil, errors.New("token_use must be id or access")
	}
	return claims, nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func reject(c echo.Context, message string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="agency-rbac"`)
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": message})
}
