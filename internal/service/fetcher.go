package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go"

	"github.com/gunantos/miniapp-telegram/internal/utils"
)

// ErrMaxRetriesExceeded 重试次数耗尽
var ErrMaxRetriesExceeded = errors.New("max retries exceeded")

const (
	fetchRetries = 3
	// 可用性探测结果的缓存时长，避免重复 HEAD 同一个地址
	availabilityCacheTTL = 10 * time.Minute
)

// Fetcher 页面抓取器：带重试的 GET 和带缓存的可用性探测
type Fetcher struct {
	client      *utils.HTTPClient
	fetchClient *http.Client
	probeClient *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: utils.NewHTTPClient(),
		fetchClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		probeClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// FetchWithRetry 抓取页面 HTML，失败后等待 1s、2s 再试，最多 3 次
// 全部失败时返回 ErrMaxRetriesExceeded
func (f *Fetcher) FetchWithRetry(ctx context.Context, url string) (string, error) {
	var body string

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
			if err != nil {
				return err
			}
			req.Header.Set("User-Agent", f.client.RandomUserAgent())
			req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

			resp, err := f.fetchClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return fmt.Errorf("请求返回状态码: %d", resp.StatusCode)
			}

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			body = string(data)
			return nil
		},
		retry.Attempts(fetchRetries),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			// 第 n 次失败后等 (n+1) 秒
			return time.Duration(n+1) * time.Second
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, err)
	}

	return body, nil
}

// CheckAvailable 探测播放地址是否可用
// 只发 HEAD 请求，任何失败都按不可用处理，绝不报错
func (f *Fetcher) CheckAvailable(url string) bool {
	if url == "" {
		return false
	}

	cacheKey := "availability:" + url
	if cached, ok := utils.CacheGet(cacheKey); ok {
		if available, ok := cached.(bool); ok {
			return available
		}
	}

	available := f.probe(url)
	utils.CacheSet(cacheKey, available, availabilityCacheTTL)
	return available
}

func (f *Fetcher) probe(url string) bool {
	req, err := http.NewRequest("HEAD", url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", f.client.RandomUserAgent())

	resp, err := f.probeClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
