package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer signs and verifies HS256 bearer tokens. The subject claim
// carries the user ID.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (ti *TokenIssuer) AccessToken(userID int64) (string, error) {
	return ti.sign(userID, "access", ti.accessTTL)
}

func (ti *TokenIssuer) RefreshToken(userID int64) (string, error) {
	return ti.sign(userID, "refresh", ti.refreshTTL)
}

func (ti *TokenIssuer) sign(userID int64, kind string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"type": kind,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// VerifyAccessToken validates the token signature and expiry and returns the
// user ID from the subject claim. Refresh tokens are rejected.
func (ti *TokenIssuer) VerifyAccessToken(tokenString string) (int64, error) {
	return ti.verify(tokenString, "access")
}

// VerifyRefreshToken validates a refresh token and returns the user ID.
func (ti *TokenIssuer) VerifyRefreshToken(tokenString string) (int64, error) {
	return ti.verify(tokenString, "refresh")
}

func (ti *TokenIssuer) verify(tokenString, kind string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return ti.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, errors.New("invalid token claims")
	}
	if tokenKind, _ := claims["type"].(string); tokenKind != kind {
		return 0, fmt.Errorf("token is not an %s token", kind)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("read subject claim: %w", err)
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse subject claim %q: %w", sub, err)
	}
	return userID, nil
}
