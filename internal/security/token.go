package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"concord/internal/domain"
)

// Identity is the verified identity carried by a request token. The token
// is minted by the external identity provider; this service only validates
// it and extracts the profile reference.
type Identity struct {
	ProfileID string
	Name      string
	AvatarURL string
}

// TokenService wraps JWT validation for identity tokens, plus creation for
// tests and local development.
type TokenService struct {
	secret    []byte
	expiresIn time.Duration
}

func NewTokenService(secret string, expiresIn time.Duration) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		expiresIn: expiresIn,
	}
}

// Create mints an identity token for the given profile using the default TTL.
func (t *TokenService) Create(id Identity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    id.ProfileID,
		"name":   id.Name,
		"avatar": id.AvatarURL,
		"iat":    now.Unix(),
		"exp":    now.Add(t.expiresIn).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates a token and returns the identity it carries. A token
// without a subject is rejected.
func (t *TokenService) Parse(tokenStr string) (*Identity, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenMalformed
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, domain.ErrUnauthenticated
	}
	name, _ := claims["name"].(string)
	avatar, _ := claims["avatar"].(string)

	return &Identity{
		ProfileID: sub,
		Name:      name,
		AvatarURL: avatar,
	}, nil
}
