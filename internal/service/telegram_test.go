package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "12345:test-bot-token"

// signInitData 按 Telegram 的算法给参数签名
func signInitData(t *testing.T, botToken string, params map[string]string) string {
	t.Helper()

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))
	hash := hex.EncodeToString(mac.Sum(nil))

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set("hash", hash)
	return values.Encode()
}

func TestValidateInitData(t *testing.T) {
	svc := NewTelegramService(testBotToken, "")

	initData := signInitData(t, testBotToken, map[string]string{
		"auth_date": fmt.Sprintf("%d", time.Now().Unix()),
		"query_id":  "AAF03wc",
		"user":      `{"id":123456789,"first_name":"Budi","last_name":"Santoso","username":"budi","language_code":"id","photo_url":"https://t.me/i/userpic/budi.jpg"}`,
	})

	user, err := svc.ValidateInitData(initData)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), user.ID)
	assert.Equal(t, "Budi", user.FirstName)
	assert.Equal(t, "Santoso", user.LastName)
	assert.Equal(t, "budi", user.Username)
	assert.Equal(t, "id", user.LanguageCode)
}

func TestValidateInitDataTampered(t *testing.T) {
	svc := NewTelegramService(testBotToken, "")

	initData := signInitData(t, testBotToken, map[string]string{
		"auth_date": fmt.Sprintf("%d", time.Now().Unix()),
		"user":      `{"id":123456789,"first_name":"Budi"}`,
	})

	// 改掉 user 字段后签名对不上
	tampered := strings.Replace(initData, "123456789", "987654321", 1)
	_, err := svc.ValidateInitData(tampered)
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestValidateInitDataWrongBotToken(t *testing.T) {
	svc := NewTelegramService(testBotToken, "")

	// 用别的 bot token 签名
	initData := signInitData(t, "99999:other-token", map[string]string{
		"auth_date": fmt.Sprintf("%d", time.Now().Unix()),
		"user":      `{"id":1,"first_name":"X"}`,
	})

	_, err := svc.ValidateInitData(initData)
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestValidateInitDataExpired(t *testing.T) {
	svc := NewTelegramService(testBotToken, "")

	// auth_date 超过有效期
	initData := signInitData(t, testBotToken, map[string]string{
		"auth_date": fmt.Sprintf("%d", time.Now().Add(-25*time.Hour).Unix()),
		"user":      `{"id":1,"first_name":"X"}`,
	})

	_, err := svc.ValidateInitData(initData)
	assert.ErrorIs(t, err, ErrInitDataExpired)
}

const sampleUpdatesJSON = `{
	"ok": true,
	"result": [
		{"update_id": 1, "channel_post": {
			"chat": {"id": -1001234, "username": "mychannel"},
			"caption": "Kisah Cinta Episode 1",
			"video": {"file_id": "BAACAgUAAx0Cabcdefgh", "duration": 240, "width": 720, "height": 1280, "file_size": 10485760, "mime_type": "video/mp4", "thumb": {"file_id": "AAMCBQAD"}}
		}},
		{"update_id": 2, "channel_post": {
			"chat": {"id": -1009999, "username": "otherchannel"},
			"video": {"file_id": "BAACAgUAAx0Cother", "duration": 60, "file_size": 1048576, "mime_type": "video/mp4"}
		}},
		{"update_id": 3, "channel_post": {
			"chat": {"id": -1001234, "username": "mychannel"},
			"text": "纯文字消息，没有视频"
		}}
	]
}`

func TestGetChannelVideos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/getUpdates")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleUpdatesJSON)
	}))
	defer server.Close()

	svc := NewTelegramService(testBotToken, "@mychannel")
	svc.apiBase = server.URL

	videos, err := svc.GetChannelVideos(50)
	require.NoError(t, err)
	// 只保留配置频道里的视频消息
	require.Len(t, videos, 1)
	assert.Equal(t, "BAACAgUAAx0Cabcdefgh", videos[0].FileID)
	assert.Equal(t, 240, videos[0].Duration)
	assert.Equal(t, int64(10485760), videos[0].FileSize)
	assert.Equal(t, "AAMCBQAD", videos[0].ThumbFileID)
	assert.Equal(t, "Kisah Cinta Episode 1", videos[0].Caption)
}

func TestGetChannelVideosNoChannelFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleUpdatesJSON)
	}))
	defer server.Close()

	svc := NewTelegramService(testBotToken, "")
	svc.apiBase = server.URL

	videos, err := svc.GetChannelVideos(50)
	require.NoError(t, err)
	assert.Len(t, videos, 2)
}

func TestGetChannelVideosRequiresToken(t *testing.T) {
	svc := NewTelegramService("", "")
	_, err := svc.GetChannelVideos(50)
	assert.Error(t, err)
}

func TestValidateInitDataMissingPieces(t *testing.T) {
	svc := NewTelegramService(testBotToken, "")

	// 没有 hash
	_, err := svc.ValidateInitData("auth_date=1&user=%7B%22id%22%3A1%7D")
	assert.ErrorIs(t, err, ErrInvalidInitData)

	// 签名正确但没有 user 字段
	initData := signInitData(t, testBotToken, map[string]string{
		"auth_date": fmt.Sprintf("%d", time.Now().Unix()),
	})
	_, err = svc.ValidateInitData(initData)
	assert.ErrorIs(t, err, ErrInvalidInitData)
}
