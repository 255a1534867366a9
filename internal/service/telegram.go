package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/gunantos/miniapp-telegram/internal/utils"
)

// Telegram 登录校验失败
var (
	ErrInvalidInitData = errors.New("initData 校验失败")
	ErrInitDataExpired = errors.New("initData 已过期")
)

// initData 的有效期，超过视为过期重放
const initDataMaxAge = 24 * time.Hour

// TelegramUser Mini App initData 里携带的用户信息
type TelegramUser struct {
	ID           int64  `json:"id"`
	IsBot        bool   `json:"is_bot"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	LanguageCode string `json:"language_code"`
	PhotoURL     string `json:"photo_url"`
}

// TelegramService Telegram Bot API 封装
type TelegramService struct {
	botToken  string
	channelID string
	apiBase   string
	client    *utils.HTTPClient

	// getFile 结果缓存 + 防击穿
	fileURLCache *utils.TTLCache[string]
	group        singleflight.Group
}

func NewTelegramService(botToken, channelID string) *TelegramService {
	return &TelegramService{
		botToken:  botToken,
		channelID: channelID,
		apiBase:   "https://api.telegram.org",
		client:    utils.NewHTTPClient(),
		// Telegram 的文件直链约 1 小时失效，缓存时间要短于它
		fileURLCache: utils.NewTTLCache[string](2048, 50*time.Minute),
	}
}

// ValidateInitData 校验 Mini App initData 签名并解出用户
// 算法：secret = HMAC_SHA256("WebAppData", botToken)，
// 再用 secret 对按 key 排序的 data-check-string 做 HMAC，比对 hash 字段
func (s *TelegramService) ValidateInitData(initData string) (*TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, ErrInvalidInitData
	}
	values.Del("hash")

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(s.botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	wantHash := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(gotHash), []byte(wantHash)) {
		return nil, ErrInvalidInitData
	}

	// auth_date 防重放
	if authDate := values.Get("auth_date"); authDate != "" {
		var ts int64
		if _, err := fmt.Sscanf(authDate, "%d", &ts); err == nil {
			if time.Since(time.Unix(ts, 0)) > initDataMaxAge {
				return nil, ErrInitDataExpired
			}
		}
	}

	userJSON := values.Get("user")
	if userJSON == "" {
		return nil, fmt.Errorf("%w: 缺少 user 字段", ErrInvalidInitData)
	}

	var user TelegramUser
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, fmt.Errorf("%w: 解析 user 失败: %v", ErrInvalidInitData, err)
	}
	if user.ID == 0 {
		return nil, ErrInvalidInitData
	}

	return &user, nil
}

// getFileResponse Bot API getFile 响应
type getFileResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		FileID   string `json:"file_id"`
		FileSize int64  `json:"file_size"`
		FilePath string `json:"file_path"`
	} `json:"result"`
}

// ResolveFileURL 把 Telegram 文件 ID 解析成可下载的直链
// 同一文件的并发解析只打一次 Bot API
func (s *TelegramService) ResolveFileURL(fileID string) (string, error) {
	if s.botToken == "" {
		return "", errors.New("未配置 TELEGRAM_BOT_TOKEN")
	}

	if cached, ok := s.fileURLCache.Get(fileID); ok {
		return cached, nil
	}

	result, err, _ := s.group.Do(fileID, func() (interface{}, error) {
		apiURL := fmt.Sprintf("%s/bot%s/getFile?file_id=%s",
			s.apiBase, s.botToken, url.QueryEscape(fileID))

		var resp getFileResponse
		if err := s.client.GetJSON(apiURL, &resp); err != nil {
			return "", fmt.Errorf("请求 getFile 失败: %w", err)
		}
		if !resp.OK || resp.Result.FilePath == "" {
			return "", fmt.Errorf("getFile 返回异常: %s", resp.Description)
		}

		fileURL := fmt.Sprintf("%s/file/bot%s/%s", s.apiBase, s.botToken, resp.Result.FilePath)
		s.fileURLCache.Set(fileID, fileURL)
		return fileURL, nil
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

// ChannelVideo 频道消息里的视频
type ChannelVideo struct {
	FileID      string `json:"file_id"`
	Duration    int    `json:"duration"` // 秒
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	FileSize    int64  `json:"file_size"`
	MimeType    string `json:"mime_type"`
	ThumbFileID string
	Caption     string
}

// getUpdatesResponse Bot API getUpdates 响应，只取频道视频消息相关字段
type getUpdatesResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      []struct {
		UpdateID    int64 `json:"update_id"`
		ChannelPost *struct {
			Chat struct {
				ID       int64  `json:"id"`
				Username string `json:"username"`
			} `json:"chat"`
			Caption string `json:"caption"`
			Video   *struct {
				FileID   string `json:"file_id"`
				Duration int    `json:"duration"`
				Width    int    `json:"width"`
				Height   int    `json:"height"`
				FileSize int64  `json:"file_size"`
				MimeType string `json:"mime_type"`
				Thumb    *struct {
					FileID string `json:"file_id"`
				} `json:"thumb"`
			} `json:"video"`
		} `json:"channel_post"`
	} `json:"result"`
}

// GetChannelVideos 从 Bot API 更新流里取频道视频消息
// 只能看到机器人加入频道后还没被消费的更新，属于尽力而为
func (s *TelegramService) GetChannelVideos(limit int) ([]ChannelVideo, error) {
	if s.botToken == "" {
		return nil, errors.New("未配置 TELEGRAM_BOT_TOKEN")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))
	query.Set("allowed_updates", `["channel_post"]`)
	apiURL := fmt.Sprintf("%s/bot%s/getUpdates?%s", s.apiBase, s.botToken, query.Encode())

	var resp getUpdatesResponse
	if err := s.client.GetJSON(apiURL, &resp); err != nil {
		return nil, fmt.Errorf("请求 getUpdates 失败: %w", err)
	}
	if !resp.OK {
		return nil, fmt.Errorf("getUpdates 返回异常: %s", resp.Description)
	}

	var videos []ChannelVideo
	for _, update := range resp.Result {
		post := update.ChannelPost
		if post == nil || post.Video == nil {
			continue
		}
		if !s.matchChannel(post.Chat.ID, post.Chat.Username) {
			continue
		}

		video := ChannelVideo{
			FileID:   post.Video.FileID,
			Duration: post.Video.Duration,
			Width:    post.Video.Width,
			Height:   post.Video.Height,
			FileSize: post.Video.FileSize,
			MimeType: post.Video.MimeType,
			Caption:  post.Caption,
		}
		if post.Video.Thumb != nil {
			video.ThumbFileID = post.Video.Thumb.FileID
		}
		videos = append(videos, video)
	}

	return videos, nil
}

// matchChannel 未配置频道时接受全部频道消息
func (s *TelegramService) matchChannel(chatID int64, username string) bool {
	if s.channelID == "" {
		return true
	}
	if s.channelID == fmt.Sprintf("%d", chatID) {
		return true
	}
	return strings.TrimPrefix(s.channelID, "@") == username
}
