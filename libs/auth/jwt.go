package auth

import (
	"crypto"
	"crypto/hmac"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid token")

const RoleAdmin = "admin"

// Claims carries the caller identity the booking API needs.
type Claims struct {
	Sub   string `json:"sub"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	Exp   int64  `json:"exp"`
	Iat   int64  `json:"iat"`
}

func (c Claims) IsAdmin() bool { return c.Role == RoleAdmin }

type Header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
	Kid string `json:"kid"`
}

// token is a JWT split into its three segments.
type token struct {
	header    Header
	unsigned  string
	payload   string
	signature string
}

func split(raw string) (*token, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}
	b, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidToken
	}
	t := &token{unsigned: parts[0] + "." + parts[1], payload: parts[1], signature: parts[2]}
	if err := json.Unmarshal(b, &t.header); err != nil {
		return nil, ErrInvalidToken
	}
	return t, nil
}

func (t *token) claims(now time.Time) (*Claims, error) {
	b, err := base64.RawURLEncoding.DecodeString(t.payload)
	if err != nil {
		return nil, ErrInvalidToken
	}
	var c Claims
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, ErrInvalidToken
	}
	if c.Sub == "" {
		return nil, ErrInvalidToken
	}
	if c.Exp > 0 && now.Unix() > c.Exp {
		return nil, ErrInvalidToken
	}
	return &c, nil
}

func SignHS256(claims Claims, secret string) (string, error) {
	headerJSON, err := json.Marshal(Header{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		return "", err
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	unsigned := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(payloadJSON)
	return unsigned + "." + hmacSHA256(unsigned, secret), nil
}

func ParseAndVerifyHS256(raw, secret string) (*Claims, error) {
	t, err := split(raw)
	if err != nil {
		return nil, err
	}
	if t.header.Alg != "HS256" {
		return nil, ErrInvalidToken
	}
	if !hmac.Equal([]byte(t.signature), []byte(hmacSHA256(t.unsigned, secret))) {
		return nil, ErrInvalidToken
	}
	return t.claims(time.Now())
}

func hmacSHA256(data, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func VerifyRS256(raw string, pubKey crypto.PublicKey) (*Claims, error) {
	t, err := split(raw)
	if err != nil {
		return nil, err
	}
	return verifyRS256(t, pubKey)
}

func verifyRS256(t *token, pubKey crypto.PublicKey) (*Claims, error) {
	rsaKey, ok := pubKey.(*rsa.PublicKey)
	if !ok || t.header.Alg != "RS256" {
		return nil, ErrInvalidToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(t.signature)
	if err != nil {
		return nil, ErrInvalidToken
	}
	hash := sha256.Sum256([]byte(t.unsigned))
	if err := rsa.VerifyPKCS1v15(rsaKey, crypto.SHA256, hash[:], sig); err != nil {
		return nil, ErrInvalidToken
	}
	return t.claims(time.Now())
}
