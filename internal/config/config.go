package config

import (
	"fmt"
	"os"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret string // JWT署名シークレット

	// Razorpayの資格情報。両方空ならモックゲートウェイで動く。
	RazorpayKeyID     string
	RazorpayKeySecret string

	// QRに埋め込む客向けURLの起点
	PublicBaseURL string

	FEURL string // フロントURL（CORSで使う）
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port:              os.Getenv("PORT"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		PublicBaseURL:     os.Getenv("PUBLIC_BASE_URL"),
		FEURL:             os.Getenv("FE_URL"),
	}

	// 必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	// 任意項目のデフォルト
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:" + cfg.Port
	}
	if cfg.FEURL == "" {
		cfg.FEURL = "*"
	}

	return cfg, nil
}

// モックゲートウェイで動かすべきか
func (c Config) PaymentMockMode() bool {
	return c.RazorpayKeyID == "" || c.RazorpayKeySecret == ""
}
