package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // development/production

	DatabaseURL         string // 接続文字列（空なら POSTGRES_* から組み立て）
	DatabaseFallbackURL string // ホスト型DBへのフォールバック
	DBConnectAttempts   int
	DBConnectDelay      time.Duration

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	LockoutMaxAttempts int
	LockoutDuration    time.Duration

	FEURL string // フロントURL（CORS）

	SMTP SMTPConfig

	RateLimitRequests     int
	RateLimitWindow       time.Duration
	AuthRateLimitRequests int
	RedisAddr             string // 空ならメモリで数える

	LogMongoURI        string
	LogMongoDB         string
	LogMongoCollection string

	Storage StorageConfig

	StrictOrderTransitions bool

	SeedAdminEmail    string
	SeedAdminPassword string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// Host が空ならメールはログに出すだけ
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

type StorageConfig struct {
	Driver    string // local / s3
	LocalRoot string
	PublicURL string

	S3Bucket   string
	S3Region   string
	S3Key      string
	S3Secret   string
	S3Endpoint string
	S3URL      string
}

func (c Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// DSN は DATABASE_URL か POSTGRES_* から接続文字列を返す。
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:     c.PostgresDB,
		RawQuery: "sslmode=disable&TimeZone=UTC",
	}
	return u.String()
}

// Loadは環境変数（.env があれば先に読む）
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv は .env を読まずに現在の環境変数だけで組み立てる。
func FromEnv() (Config, error) {
	var errs []string
	p := parser{errs: &errs}

	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "development"),

		DatabaseURL:         os.Getenv("DATABASE_URL"),
		DatabaseFallbackURL: os.Getenv("DATABASE_FALLBACK_URL"),
		DBConnectAttempts:   p.int("DB_CONNECT_ATTEMPTS", 5),
		DBConnectDelay:      p.duration("DB_CONNECT_DELAY", 5*time.Second),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     p.int("POSTGRES_PORT", 5432),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		AccessTTL:  p.duration("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTTL: p.duration("JWT_REFRESH_TTL", 720*time.Hour),

		LockoutMaxAttempts: p.int("LOCKOUT_MAX_ATTEMPTS", 5),
		LockoutDuration:    p.duration("LOCKOUT_DURATION", 2*time.Hour),

		FEURL: getenv("FE_URL", "http://localhost:3000"),

		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     p.int("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getenv("SMTP_FROM", "no-reply@lastpiece.local"),
			FromName: getenv("SMTP_FROM_NAME", "Last Piece"),
		},

		RateLimitRequests:     p.int("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:       p.duration("RATE_LIMIT_WINDOW", 15*time.Minute),
		AuthRateLimitRequests: p.int("AUTH_RATE_LIMIT_REQUESTS", 10),
		RedisAddr:             os.Getenv("REDIS_ADDR"),

		LogMongoURI:        os.Getenv("LOG_MONGO_URI"),
		LogMongoDB:         getenv("LOG_MONGO_DB", "lastpiece"),
		LogMongoCollection: getenv("LOG_MONGO_COLLECTION", "logs"),

		Storage: StorageConfig{
			Driver:     getenv("STORAGE_DRIVER", "local"),
			LocalRoot:  getenv("STORAGE_LOCAL_ROOT", "./uploads"),
			PublicURL:  getenv("STORAGE_PUBLIC_URL", "/uploads"),
			S3Bucket:   os.Getenv("S3_BUCKET"),
			S3Region:   getenv("S3_REGION", "us-east-1"),
			S3Key:      os.Getenv("S3_KEY"),
			S3Secret:   os.Getenv("S3_SECRET"),
			S3Endpoint: os.Getenv("S3_ENDPOINT"),
			S3URL:      os.Getenv("S3_URL"),
		},

		StrictOrderTransitions: p.bool("ORDER_STRICT_TRANSITIONS", false),

		SeedAdminEmail:    os.Getenv("SEED_ADMIN_EMAIL"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}
	if cfg.DatabaseURL == "" && (cfg.PostgresUser == "" || cfg.PostgresDB == "") {
		errs = append(errs, "DATABASE_URL or POSTGRES_USER/POSTGRES_DB is required")
	}
	if cfg.DBConnectAttempts < 1 {
		errs = append(errs, "DB_CONNECT_ATTEMPTS must be at least 1")
	}
	if cfg.LockoutMaxAttempts < 1 {
		errs = append(errs, "LOCKOUT_MAX_ATTEMPTS must be at least 1")
	}
	switch cfg.Storage.Driver {
	case "local":
	case "s3":
		if cfg.Storage.S3Bucket == "" {
			errs = append(errs, "S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		errs = append(errs, "STORAGE_DRIVER must be local or s3")
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// 数値・期間の読み取り。失敗はまとめて返す。
type parser struct {
	errs *[]string
}

func (p parser) int(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Sprintf("%s must be number", key))
		return def
	}
	return i
}

func (p parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Sprintf("%s must be duration (e.g. 15m)", key))
		return def
	}
	return d
}

func (p parser) bool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Sprintf("%s must be true/false", key))
		return def
	}
	return b
}
