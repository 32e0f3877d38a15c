// telegram/initdata.go
package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"
)

var ErrInvalidInitData = errors.New("invalid web app init data")

// InitData is the verified identity of a web app caller. Hash doubles
// as the live-view session identity: it is stable for one authenticated
// web-app session, so a reconnecting tab presents the same value.
type InitData struct {
	UserID int64
	Hash   string
}

type initDataUser struct {
	ID int64 `json:"id"`
}

// VerifyInitData checks the HMAC signature of Telegram WebApp init data
// against the bot token and extracts the caller identity. Any defect in
// the payload fails closed with ErrInvalidInitData.
func VerifyInitData(botToken, initData string) (*InitData, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrInvalidInitData
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, ErrInvalidInitData
	}
	values.Del("hash")

	// data-check-string: sorted key=value pairs joined by newlines.
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(hash)) {
		return nil, ErrInvalidInitData
	}

	var user initDataUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil || user.ID == 0 {
		return nil, ErrInvalidInitData
	}

	return &InitData{UserID: user.ID, Hash: hash}, nil
}

// InitDataVerifier adapts VerifyInitData to the coordinator's
// plain-values Verifier interface.
type InitDataVerifier struct {
	token string
}

func NewInitDataVerifier(token string) *InitDataVerifier {
	return &InitDataVerifier{token: token}
}

func (v *InitDataVerifier) Verify(initData string) (int64, string, error) {
	data, err := VerifyInitData(v.token, initData)
	if err != nil {
		return 0, "", err
	}
	return data.UserID, data.Hash, nil
}
