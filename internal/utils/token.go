package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session state is carried entirely by signed HS256 tokens; nothing is
// tracked server-side. Each token embeds a "typ" discriminator so the
// three token families can never be mistaken for one another: a session
// token proves a login, an admin-record token preserves admin identity
// across store resets, and a reset token authorizes one password change.
const (
	typSession     = "session"
	typAdminRecord = "admin-record"
	typReset       = "reset"

	// AdminRecordTTL is long because the admin-record cookie must outlive
	// store wipes.
	AdminRecordTTL = 180 * 24 * time.Hour

	// ResetTTL bounds how long a mailed password-reset link stays valid.
	ResetTTL = 15 * time.Minute
)

// SessionClaims is the decoded payload of a verified session token.
type SessionClaims struct {
	Subject  string    // authenticated email
	IssuedAt time.Time // when the token was signed
	Expires  time.Time // when the token stops verifying
}

// AdminRecord is the payload of an admin-record token. It carries the
// credential hash and salt so an admin can still authenticate after the
// user store is reset.
type AdminRecord struct {
	Email        string
	PasswordHash string
	PasswordSalt string
}

// NewSessionToken signs a session assertion for the given subject (a user
// email). Extra claims may be merged in; they can never override the type
// discriminator or the timing claims.
func NewSessionToken(secret, subject string, ttl time.Duration, extra map[string]any) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	claims["typ"] = typSession
	claims["sub"] = subject
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(ttl).Unix()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// VerifySessionToken checks signature, expiry, type discriminator and the
// presence of a subject. It returns nil on any failure (expired, malformed,
// wrong signature, wrong type) rather than an error; callers only need to
// know whether the session is usable.
func VerifySessionToken(secret, token string) *SessionClaims {
	claims, ok := parseHS256(secret, token)
	if !ok || claims["typ"] != typSession {
		return nil
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil
	}
	out := &SessionClaims{Subject: sub}
	if iat, ok := claims["iat"].(float64); ok {
		out.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	if exp, ok := claims["exp"].(float64); ok {
		out.Expires = time.Unix(int64(exp), 0).UTC()
	}
	return out
}

// NewAdminRecordToken signs a long-lived admin-record assertion.
func NewAdminRecordToken(secret string, rec AdminRecord) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"typ":          typAdminRecord,
		"sub":          rec.Email,
		"email":        rec.Email,
		"passwordHash": rec.PasswordHash,
		"passwordSalt": rec.PasswordSalt,
		"iat":          now.Unix(),
		"exp":          now.Add(AdminRecordTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// VerifyAdminRecordToken returns the embedded record, or nil when the
// token is invalid or is not an admin-record token.
func VerifyAdminRecordToken(secret, token string) *AdminRecord {
	claims, ok := parseHS256(secret, token)
	if !ok || claims["typ"] != typAdminRecord {
		return nil
	}
	email, _ := claims["email"].(string)
	hash, _ := claims["passwordHash"].(string)
	salt, _ := claims["passwordSalt"].(string)
	sub, _ := claims["sub"].(string)
	if sub == "" || email == "" || hash == "" || salt == "" {
		return nil
	}
	return &AdminRecord{Email: email, PasswordHash: hash, PasswordSalt: salt}
}

// NewResetToken signs a short-lived password-reset assertion for email.
func NewResetToken(secret, email string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"typ":   typReset,
		"sub":   email,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(ResetTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// VerifyResetToken returns the email a valid reset token was issued for,
// or "" when the token is unusable.
func VerifyResetToken(secret, token string) string {
	claims, ok := parseHS256(secret, token)
	if !ok || claims["typ"] != typReset {
		return ""
	}
	email, _ := claims["email"].(string)
	return email
}

// parseHS256 validates signature and registered claims, rejecting any
// signing method other than HMAC. The jwt library enforces exp/iat checks
// during Parse.
func parseHS256(secret, token string) (jwt.MapClaims, bool) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	return claims, ok
}
