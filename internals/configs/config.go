package configs

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ .env not found, using system ENV")
		} else {
			log.Println("✅ .env loaded")
		}
	} else {
		log.Println("🚀 Running in Railway, using system ENV")
	}
}

// =======================
// TYPED CONFIG
// =======================

type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
	SSLMode  string
}

type MidtransConfig struct {
	ServerKey     string
	UseProduction bool
}

// PaymentPolicy holds the checkout guards applied before a gateway session is opened.
type PaymentPolicy struct {
	StaleAfter      time.Duration   // pending payments older than this are cancelled
	RateWindow      time.Duration   // window for counting open sessions
	RateMax         int             // max pending sessions inside RateWindow
	DuplicateWindow time.Duration   // identical-amount pending inside this window conflicts
	MinAmount       decimal.Decimal // smallest chargeable amount
	SessionTTL      time.Duration
	Currency        string
	SuccessURL      string
	CancelURL       string
}

func DefaultPaymentPolicy() PaymentPolicy {
	return PaymentPolicy{
		StaleAfter:      time.Minute,
		RateWindow:      5 * time.Minute,
		RateMax:         3,
		DuplicateWindow: time.Minute,
		MinAmount:       decimal.RequireFromString("1.00"),
		SessionTTL:      30 * time.Minute,
		Currency:        "INR",
	}
}

type ReceiptConfig struct {
	Format  string // html | webp
	Storage string // local | oss
	Dir     string
	Prefix  string
	OSS     OSSConfig
}

// OSSConfig is only read when Storage is "oss".
type OSSConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	SecurityToken string
	Bucket        string
	PublicBase    string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.From != ""
}

type AppConfig struct {
	Env         string
	Port        string
	JWTSecret   string
	FrontendURL string
	LogLevel    string
	SweepCron   string

	DB       DBConfig
	Midtrans MidtransConfig
	Payment  PaymentPolicy
	Receipt  ReceiptConfig
	Twilio   TwilioConfig
}

// Load reads the process environment (after LoadEnv) into AppConfig.
func Load() AppConfig {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	def := DefaultPaymentPolicy()
	v.SetDefault("PORT", "3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SWEEP_CRON", "*/5 * * * *")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("MIDTRANS_USE_PROD", false)
	v.SetDefault("PAYMENT_STALE_AFTER", def.StaleAfter)
	v.SetDefault("PAYMENT_RATE_WINDOW", def.RateWindow)
	v.SetDefault("PAYMENT_RATE_MAX", def.RateMax)
	v.SetDefault("PAYMENT_DUPLICATE_WINDOW", def.DuplicateWindow)
	v.SetDefault("PAYMENT_MIN_AMOUNT", def.MinAmount.String())
	v.SetDefault("PAYMENT_SESSION_TTL", def.SessionTTL)
	v.SetDefault("PAYMENT_CURRENCY", def.Currency)
	v.SetDefault("RECEIPT_FORMAT", "html")
	v.SetDefault("RECEIPT_STORAGE", "local")
	v.SetDefault("RECEIPT_DIR", "./storage/receipts")
	v.SetDefault("RECEIPT_PREFIX", "receipts")

	minAmount, err := decimal.NewFromString(v.GetString("PAYMENT_MIN_AMOUNT"))
	if err != nil || !minAmount.IsPositive() {
		log.Printf("⚠️ invalid PAYMENT_MIN_AMOUNT=%q, using %s", v.GetString("PAYMENT_MIN_AMOUNT"), def.MinAmount)
		minAmount = def.MinAmount
	}

	frontend := strings.TrimRight(v.GetString("FRONTEND_URL"), "/")
	cfg := AppConfig{
		Env:         v.GetString("APP_ENV"),
		Port:        v.GetString("PORT"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		FrontendURL: frontend,
		LogLevel:    v.GetString("LOG_LEVEL"),
		SweepCron:   v.GetString("SWEEP_CRON"),
		DB: DBConfig{
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Midtrans: MidtransConfig{
			ServerKey:     v.GetString("MIDTRANS_SERVER_KEY"),
			UseProduction: v.GetBool("MIDTRANS_USE_PROD"),
		},
		Payment: PaymentPolicy{
			StaleAfter:      v.GetDuration("PAYMENT_STALE_AFTER"),
			RateWindow:      v.GetDuration("PAYMENT_RATE_WINDOW"),
			RateMax:         v.GetInt("PAYMENT_RATE_MAX"),
			DuplicateWindow: v.GetDuration("PAYMENT_DUPLICATE_WINDOW"),
			MinAmount:       minAmount,
			SessionTTL:      v.GetDuration("PAYMENT_SESSION_TTL"),
			Currency:        v.GetString("PAYMENT_CURRENCY"),
			SuccessURL:      frontend + "/student/payments/success",
			CancelURL:       frontend + "/student/payments/cancel",
		},
		Receipt: ReceiptConfig{
			Format:  strings.ToLower(v.GetString("RECEIPT_FORMAT")),
			Storage: strings.ToLower(v.GetString("RECEIPT_STORAGE")),
			Dir:     v.GetString("RECEIPT_DIR"),
			Prefix:  v.GetString("RECEIPT_PREFIX"),
			OSS: OSSConfig{
				Endpoint:      strings.TrimSpace(v.GetString("ALI_OSS_ENDPOINT")),
				AccessKey:     strings.TrimSpace(v.GetString("ALI_OSS_ACCESS_KEY")),
				SecretKey:     strings.TrimSpace(v.GetString("ALI_OSS_SECRET_KEY")),
				SecurityToken: strings.TrimSpace(v.GetString("ALI_OSS_SECURITY_TOKEN")),
				Bucket:        strings.TrimSpace(v.GetString("ALI_OSS_BUCKET")),
				PublicBase:    strings.TrimRight(strings.TrimSpace(v.GetString("ALI_OSS_PUBLIC_BASE")), "/"),
			},
		},
		Twilio: TwilioConfig{
			AccountSID: v.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:  v.GetString("TWILIO_AUTH_TOKEN"),
			From:       v.GetString("TWILIO_FROM_NUMBER"),
		},
	}

	if cfg.JWTSecret == "" {
		log.Println("❌ JWT_SECRET is not set!")
	}
	if cfg.Midtrans.ServerKey == "" {
		log.Println("⚠️ MIDTRANS_SERVER_KEY is not set, webhook signatures will fail")
	}
	return cfg
}
