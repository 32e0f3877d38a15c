package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strings"
	"testing"
)

const testToken = "12345:TEST-TOKEN"

// signInitData builds a payload signed the way Telegram signs WebApp
// init data.
func signInitData(token string, fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+fields[key])
	}
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(token))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	hash := hex.EncodeToString(mac.Sum(nil))

	values := url.Values{}
	for key, value := range fields {
		values.Set(key, value)
	}
	values.Set("hash", hash)
	return values.Encode()
}

func TestVerifyInitData_Valid(t *testing.T) {
	payload := signInitData(testToken, map[string]string{
		"user":      `{"id":42,"first_name":"Alice"}`,
		"auth_date": "1700000000",
		"query_id":  "AAEAAQ",
	})

	data, err := VerifyInitData(testToken, payload)
	if err != nil {
		t.Fatalf("VerifyInitData failed: %v", err)
	}
	if data.UserID != 42 {
		t.Errorf("Expected user id 42, got %d", data.UserID)
	}
	if data.Hash == "" {
		t.Error("Verified data should carry the session hash")
	}
}

func TestVerifyInitData_HashStableAcrossReconnects(t *testing.T) {
	fields := map[string]string{
		"user":      `{"id":42}`,
		"auth_date": "1700000000",
	}
	payload := signInitData(testToken, fields)

	first, err := VerifyInitData(testToken, payload)
	if err != nil {
		t.Fatalf("VerifyInitData failed: %v", err)
	}
	second, err := VerifyInitData(testToken, payload)
	if err != nil {
		t.Fatalf("VerifyInitData failed: %v", err)
	}
	if first.Hash != second.Hash {
		t.Error("The same payload must yield the same session hash")
	}
}

func TestVerifyInitData_Tampered(t *testing.T) {
	payload := signInitData(testToken, map[string]string{
		"user":      `{"id":42}`,
		"auth_date": "1700000000",
	})
	tampered := strings.Replace(payload, "42", "43", 1)

	if _, err := VerifyInitData(testToken, tampered); !errors.Is(err, ErrInvalidInitData) {
		t.Fatalf("Expected ErrInvalidInitData for tampered payload, got: %v", err)
	}
}

func TestVerifyInitData_WrongToken(t *testing.T) {
	payload := signInitData("999:OTHER-TOKEN", map[string]string{
		"user":      `{"id":42}`,
		"auth_date": "1700000000",
	})

	if _, err := VerifyInitData(testToken, payload); !errors.Is(err, ErrInvalidInitData) {
		t.Fatalf("Expected ErrInvalidInitData for a foreign signature, got: %v", err)
	}
}

func TestVerifyInitData_Malformed(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"missing hash", "user=%7B%22id%22%3A42%7D&auth_date=1700000000"},
		{"unparseable query", "a=%zz;b"},
	}
	for _, tc := range cases {
		if _, err := VerifyInitData(testToken, tc.payload); !errors.Is(err, ErrInvalidInitData) {
			t.Errorf("%s: expected ErrInvalidInitData, got: %v", tc.name, err)
		}
	}
}

func TestVerifyInitData_BadUserField(t *testing.T) {
	cases := []struct {
		name string
		user string
	}{
		{"not json", "alice"},
		{"zero id", `{"id":0}`},
		{"missing id", `{"first_name":"Alice"}`},
	}
	for _, tc := range cases {
		payload := signInitData(testToken, map[string]string{
			"user":      tc.user,
			"auth_date": "1700000000",
		})
		if _, err := VerifyInitData(testToken, payload); !errors.Is(err, ErrInvalidInitData) {
			t.Errorf("%s: expected ErrInvalidInitData, got: %v", tc.name, err)
		}
	}
}

func TestInitDataVerifier_AdaptsVerification(t *testing.T) {
	verifier := NewInitDataVerifier(testToken)

	payload := signInitData(testToken, map[string]string{
		"user":      `{"id":42}`,
		"auth_date": "1700000000",
	})

	userID, hash, err := verifier.Verify(payload)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if userID != 42 || hash == "" {
		t.Errorf("Unexpected identity: %d / %q", userID, hash)
	}

	if _, _, err := verifier.Verify("garbage"); err == nil {
		t.Error("Verify should reject garbage input")
	}
}
