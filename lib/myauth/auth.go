package myauth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	UID   string
	Email string
}

type claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

//go:generate mockgen -source=auth.go -package myauth -destination authenticator_mock.go Authenticator
type Authenticator interface {
	// CurrentUser returns false without error when the request carries no bearer token.
	CurrentUser(r *http.Request) (User, bool, error)
}

type jwtAuthenticator struct {
	secret []byte
}

func New(secret string) Authenticator {
	return &jwtAuthenticator{
		secret: []byte(secret),
	}
}

func (a *jwtAuthenticator) CurrentUser(r *http.Request) (User, bool, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return User{}, false, nil
	}

	tokenString, found := strings.CutPrefix(header, "Bearer ")
	if !found || tokenString == "" {
		return User{}, false, fmt.Errorf("authorization header is not a bearer token")
	}

	user, err := a.parse(tokenString)
	if err != nil {
		return User{}, false, err
	}
	return user, true, nil
}

func (a *jwtAuthenticator) parse(tokenString string) (User, error) {
	c := claims{}
	_, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return User{}, fmt.Errorf("error parsing bearer token: %s", err)
	}

	if c.Subject == "" {
		return User{}, fmt.Errorf("bearer token has no subject")
	}

	return User{
		UID:   c.Subject,
		Email: c.Email,
	}, nil
}

// NewToken signs a token for the given user that expires after ttl.
func NewToken(secret string, user User, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("error signing token: %s", err)
	}
	return signed, nil
}
