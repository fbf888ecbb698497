package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClaims(sub, role string) Claims {
	return Claims{
		Sub:   sub,
		Name:  "Ana",
		Phone: "+15550001",
		Role:  role,
		Iat:   time.Now().Unix(),
		Exp:   time.Now().Add(time.Hour).Unix(),
	}
}

func TestHS256RoundTrip(t *testing.T) {
	claims := testClaims("user-1", "")

	token, err := SignHS256(claims, "test-secret")
	require.NoError(t, err)

	parsed, err := ParseAndVerifyHS256(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, claims, *parsed)
	assert.False(t, parsed.IsAdmin())

	_, err = ParseAndVerifyHS256(token, "wrong-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHS256_Expired(t *testing.T) {
	claims := testClaims("user-1", RoleAdmin)
	claims.Exp = time.Now().Add(-time.Minute).Unix()

	token, err := SignHS256(claims, "s")
	require.NoError(t, err)
	_, err = ParseAndVerifyHS256(token, "s")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRS256Verify(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	claims := testClaims("user-2", RoleAdmin)

	token, err := signRS256(claims, key, "kid-1")
	require.NoError(t, err)

	parsed, err := VerifyRS256(token, &key.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, "user-2", parsed.Sub)
	assert.True(t, parsed.IsAdmin())
}

func TestJWKSVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": []map[string]string{{
			"kty": "RSA",
			"kid": "kid-1",
			"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
		}}})
	}))
	defer srv.Close()

	v := JWKSVerifier{Keys: NewJWKSClient(srv.URL, time.Minute)}

	token, err := signRS256(testClaims("user-3", ""), key, "kid-1")
	require.NoError(t, err)
	claims, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-3", claims.Sub)

	token, err = signRS256(testClaims("user-3", ""), key, "unknown")
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate(t *testing.T) {
	var got *Claims
	h := Authenticate(HS256Verifier{Secret: "s"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ClaimsFromContext(r.Context())
	}))

	token, err := SignHS256(testClaims("user-1", ""), "s")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.Sub)

	got = nil
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, got, "anonymous request carries no claims")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func signRS256(claims Claims, key *rsa.PrivateKey, kid string) (string, error) {
	headerJSON, err := json.Marshal(Header{Alg: "RS256", Typ: "JWT", Kid: kid})
	if err != nil {
		return "", err
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	unsigned := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(payloadJSON)
	hash := sha256.Sum256([]byte(unsigned))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, hash[:])
	if err != nil {
		return "", err
	}
	return unsigned + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}
