package app

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const principalKey = "principal"

// Principal is the signed-in user. Its ID is what reservations store as owner.
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Claims carried by the HMAC tokens the identity provider issues.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Authenticator resolves bearer tokens: HMAC JWTs first, then static tokens.
type Authenticator struct {
	secret []byte
	static map[string]Principal
}

// NewAuthenticator takes the JWT secret and STATIC_TOKENS entries shaped
// "token:user-id:Display Name". Malformed entries are skipped.
func NewAuthenticator(secret string, staticTokens []string) *Authenticator {
	a := &Authenticator{static: make(map[string]Principal)}
	if s := strings.TrimSpace(secret); s != "" {
		a.secret = []byte(s)
	}
	for _, entry := range staticTokens {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		p := Principal{ID: parts[1], Name: parts[1]}
		if len(parts) == 3 && strings.TrimSpace(parts[2]) != "" {
			p.Name = strings.TrimSpace(parts[2])
		}
		a.static[parts[0]] = p
	}
	return a
}

var errInvalidToken = errors.New("invalid token")

// Resolve returns the principal for a raw token.
func (a *Authenticator) Resolve(tokenStr string) (*Principal, error) {
	if a.secret != nil {
		claims := &Claims{}
		_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return a.secret, nil
		}, jwt.WithLeeway(5*time.Second))
		if err == nil {
			sub, _ := claims.GetSubject()
			if sub == "" {
				return nil, errInvalidToken
			}
			p := &Principal{ID: sub, Name: claims.Name, Email: claims.Email}
			if p.Name == "" {
				p.Name = p.Email
			}
			return p, nil
		}
	}

	if p, ok := a.static[tokenStr]; ok {
		return &p, nil
	}
	return nil, errInvalidToken
}

// Middleware attaches the principal to the request. Requests without an Authorization
// header continue anonymously; a header that does not resolve is rejected.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.Next()
			return
		}
		parts := strings.Fields(auth)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		p, err := a.Resolve(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// currentPrincipal is nil for anonymous requests.
func currentPrincipal(c *gin.Context) *Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*Principal)
	return p
}

// requirePrincipal aborts with 401 for anonymous requests.
func requirePrincipal(c *gin.Context) (*Principal, bool) {
	p := currentPrincipal(c)
	if p == nil {
		abortWithError(c, ErrUnauthenticated)
		return nil, false
	}
	return p, true
}
