package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// LookupTokenIssuer signs and verifies the short-lived tokens handed out by a successful lookup.
// The subject is the record id the holder proved knowledge of.
type LookupTokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewLookupTokenIssuer(secret string, ttl time.Duration) *LookupTokenIssuer {
	return &LookupTokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken creates a signed token for recordID.
func (i *LookupTokenIssuer) GenerateToken(recordID string) (string, error) {
	now := i.now()
	claims := jwt.StandardClaims{
		Subject:   recordID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(i.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// ExtractRecordID validates tokenString and returns its subject.
func (i *LookupTokenIssuer) ExtractRecordID(tokenString string) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("token does not contain a valid 'sub' claim")
	}
	return claims.Subject, nil
}
