package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired indicates the token signature was valid but the token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid indicates a bad signature, wrong signing method or malformed payload.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the payload carried by both access and refresh tokens. Nonce is
// only set on refresh tokens so that two tokens minted for the same user in
// the same instant are still distinct strings.
type Claims struct {
	Nonce string `json:"nonce,omitempty"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies signed access and refresh tokens. Access and
// refresh tokens are signed with independent secrets so that compromise of
// one cannot forge the other.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// AccessToken mints a short-lived token carrying the user id as its subject.
func (i *Issuer) AccessToken(userID int64) (string, error) {
	return i.sign(userID, "", i.accessSecret, i.accessTTL)
}

// RefreshToken mints a long-lived token with a uniqueness nonce. The caller
// must persist the returned token into the user's active set before handing
// it to a client.
func (i *Issuer) RefreshToken(userID int64) (string, error) {
	return i.sign(userID, uuid.NewString(), i.refreshSecret, i.refreshTTL)
}

// VerifyAccess checks signature and expiry of an access token and returns the
// encoded user id.
func (i *Issuer) VerifyAccess(token string) (int64, error) {
	return i.verify(token, i.accessSecret)
}

// VerifyRefresh checks signature and expiry of a refresh token and returns the
// encoded user id. It says nothing about whether the token is still in the
// user's active set.
func (i *Issuer) VerifyRefresh(token string) (int64, error) {
	return i.verify(token, i.refreshSecret)
}

func (i *Issuer) sign(userID int64, nonce string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (i *Issuer) verify(token string, secret []byte) (int64, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}
	if !parsed.Valid {
		return 0, ErrTokenInvalid
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrTokenInvalid
	}
	return userID, nil
}
