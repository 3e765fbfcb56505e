package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"  // sentinel errors for token validation outcomes
	"time"    // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT session token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Session tokens are encoded in the
// Authorization header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Identity is the authenticated principal recovered from a valid session
// token.  It carries exactly what the token encodes: who the caller is
// and whether they hold the admin role.  The signing key never appears
// in token payloads.
type Identity struct {
	UserID  uint64 // subject claim, the user's primary key
	Email   string // email claim for display and logging
	IsAdmin bool   // derived from the role claim
}

// ErrTokenInvalid is returned for malformed tokens, wrong signing
// algorithms and bad signatures.  ErrTokenExpired is returned when the
// signature checks out but the expiry has passed.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the user's identity fields, the role string, and a TTL
// in hours.  The JWT includes standard claims: subject (sub), role,
// email, expiration (exp) and issued at (iat).
func NewAccessToken(secret string, userID uint64, email, role string, ttlHours int) (AccessToken, error) {
	// Calculate the expiration time by adding the TTL to the current UTC time.
	exp := time.Now().UTC().Add(time.Duration(ttlHours) * time.Hour)
	// Construct the JWT claims.  Using MapClaims allows arbitrary key/value
	// pairs.  We set sub to the user ID, role to the user's role, exp to
	// the expiration Unix timestamp, and iat to the issued at time.
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	// Sign the token with the provided secret and obtain the string form.  If
	// signing fails, return the error and a zero AccessToken.
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken validates a raw token string against the signing
// secret and returns the identity it encodes.  Tampering with any
// encoded field invalidates the signature and yields ErrTokenInvalid;
// a structurally valid but stale token yields ErrTokenExpired.
func ParseAccessToken(secret, raw string) (Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Type assert the signing method to HMAC; reject others.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrTokenInvalid
	}
	if !tok.Valid {
		return Identity{}, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrTokenInvalid
	}
	var id Identity
	// JWT numeric values decode as float64.
	if sub, ok := claims["sub"].(float64); ok {
		id.UserID = uint64(sub)
	} else {
		return Identity{}, ErrTokenInvalid
	}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		id.IsAdmin = role == "ADMIN"
	}
	return id, nil
}
