package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 应用配置
type Config struct {
	Env               string
	AppSecret         string
	DatabaseURL       string
	JWTExpiry         time.Duration
	Port              string
	SiteName          string
	AdminToken        string // 管理接口静态 Bearer Token（非加固的占位方案）
	AdminPasswordHash string // 管理员密码 bcrypt 哈希，用于 /api/admin/login
	TelegramBotToken  string
	TelegramChannelID string // 同步来源频道，@username 或数字 ID
	MovieSeedURLs     []string
	SeriesSeedURLs    []string
	AnimeSeedURLs     []string
}

// Load 加载配置
func Load() *Config {
	expiryHours, _ := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "72"))

	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "miniapp")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	appSecret := getEnv("APP_SECRET", "your-secret-key-change-in-production")
	if getEnv("APP_ENV", "development") == "production" && appSecret == "your-secret-key-change-in-production" {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	return &Config{
		Env:               getEnv("APP_ENV", "development"),
		AppSecret:         appSecret,
		DatabaseURL:       dbURL,
		JWTExpiry:         time.Duration(expiryHours) * time.Hour,
		Port:              getEnv("PORT", "5008"),
		SiteName:          getEnv("SITE_NAME", "MiniApp Video"),
		AdminToken:        getEnv("ADMIN_TOKEN", "admin-secret-token"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChannelID: getEnv("TELEGRAM_CHANNEL_ID", ""),
		MovieSeedURLs:     getEnvList("MOVIE_SEED_URLS", "https://tv10.idlixku.com/movie/paprika-2006/"),
		SeriesSeedURLs:    getEnvList("SERIES_SEED_URLS", "https://tv10.idlixku.com/tvseries/gen-v/"),
		AnimeSeedURLs:     getEnvList("ANIME_SEED_URLS", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList 读取逗号分隔的环境变量列表
func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	if raw == "" {
		return nil
	}
	var list []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			list = append(list, s)
		}
	}
	return list
}
