package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// 実行環境
const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvProduction  = "production"
	EnvCloud       = "cloud"
)

// Configはアプリ全体の設定
type Config struct {
	Env  string // development/testing/production/cloud
	Port string // サーバーポート（2525）

	SecretKey string        // トークン署名シークレット
	TokenTTL  time.Duration // 確認・リセット・メール変更トークンの有効期限

	MailServer        string
	MailPort          int
	MailUseTLS        bool
	MailUsername      string
	MailPassword      string
	MailSubjectPrefix string
	MailSender        string

	AdminEmail string // このメールで登録したユーザーはAdministrator
	Domain     string // メール内リンクのベースURL
	StripeKey  string // 決済プロバイダのキー
	CatalogAPI string // 商品カタログAPIのベースURL

	DatabaseURL string // sqlite:///path, sqlite://, postgres://...
	SSLRedirect bool
	Debug       bool
}

// .envがあれば読み込んでからLoadする
func LoadDotenv(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Load()
}

// Loadは環境変数から設定を作る
func Load() (Config, error) {
	env := getenv("APP_CONFIG", EnvDevelopment)
	if env == "default" {
		env = EnvDevelopment
	}

	mailPort, err := atoiDefault("MAIL_PORT", 587)
	if err != nil {
		return Config{}, err
	}

	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		secret, err = randomSecret(32)
		if err != nil {
			return Config{}, fmt.Errorf("generate SECRET_KEY: %w", err)
		}
	}

	cfg := Config{
		Env:  env,
		Port: getenv("PORT", "2525"),

		SecretKey: secret,
		TokenTTL:  3600 * time.Second,

		MailServer:        getenv("MAIL_SERVER", "smtp.googlemail.com"),
		MailPort:          mailPort,
		MailUseTLS:        envBool("MAIL_USE_TLS", true),
		MailUsername:      os.Getenv("MAIL_USERNAME"),
		MailPassword:      os.Getenv("MAIL_PASSWORD"),
		MailSubjectPrefix: "[BuyYourStuffHere]",
		MailSender:        os.Getenv("APP_MAIL_SENDER"),

		AdminEmail: os.Getenv("APP_ADMIN"),
		Domain:     getenv("DOMAIN", "http://localhost:2525"),
		StripeKey:  os.Getenv("STRIPE_KEY"),
		CatalogAPI: getenv("FAKE_API", "https://fakestoreapi.com/products/"),
	}

	//環境ごとの差分
	switch env {
	case EnvDevelopment:
		cfg.Debug = true
		cfg.DatabaseURL = getenv("DEV_DATABASE_URL", "sqlite:///data-dev.sqlite")
	case EnvTesting:
		cfg.DatabaseURL = getenv("TEST_DATABASE_URL", "sqlite://")
	case EnvProduction:
		cfg.DatabaseURL = getenv("DATABASE_URL", "sqlite:///data.sqlite")
	case EnvCloud:
		cfg.DatabaseURL = getenv("DATABASE_URL", "sqlite:///data.sqlite")
		cfg.SSLRedirect = os.Getenv("DYNO") != ""
	default:
		return Config{}, fmt.Errorf("APP_CONFIG %q is not supported", env)
	}

	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}

	return cfg, nil
}

// JSONログにするか
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction || c.Env == EnvCloud
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "on":
		return true
	case "0", "false", "FALSE", "False", "off":
		return false
	default:
		return def
	}
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func randomSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
