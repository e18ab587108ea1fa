package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	Env              string
	DBDriver         string
	DBDSN            string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration
	// Public https origin of the web app, used for notification click links
	AppURL string

	// Firebase (FCM, Auth, Firestore)
	FirebaseCredentials string
	FirebaseVAPIDKey    string
	TokenStore          string

	// Pub/Sub fan-out of due birthdays
	GoogleProjectID string
	PubSubTopic     string

	RedisURL string

	// Daily check
	CheckHour   int
	CheckMinute int
	Location    *time.Location

	// Wish delivery
	WishChannels []string

	EmailProvider  string
	EmailFrom      string
	EmailFromName  string
	SMTPHost       string
	SMTPPort       string
	SMTPUser       string
	SMTPPass       string
	GmailClientID  string
	GmailSecret    string
	GmailRefresh   string
	EmailJSService string
	EmailJSTmpl    string
	EmailJSPublic  string
	EmailJSPrivate string

	WhatsAppPhoneNumberID string
	WhatsAppAccessToken   string
	WhatsAppAPIVersion    string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	accessExpiry := 15 * time.Minute
	if exp := os.Getenv("JWT_ACCESS_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			accessExpiry = parsed
		}
	}

	refreshExpiry := 168 * time.Hour // 7 days
	if exp := os.Getenv("JWT_REFRESH_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			refreshExpiry = parsed
		}
	}

	hour, minute, err := ParseClock(getEnv("CHECK_TIME", "09:00"))
	if err != nil {
		hour, minute = 9, 0
	}

	loc := time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("APP_ENV", "development"),
		DBDriver:         getEnv("DB_DRIVER", "sqlite"),
		DBDSN:            getEnv("DB_DSN", "remind-candles.db"),
		JWTSecret:        getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:  accessExpiry,
		JWTRefreshExpiry: refreshExpiry,
		AppURL:           getEnv("APP_URL", ""),

		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		FirebaseVAPIDKey:    getEnv("FIREBASE_VAPID_KEY", ""),
		TokenStore:          getEnv("TOKEN_STORE", "sql"),

		GoogleProjectID: getEnv("GOOGLE_PROJECT_ID", ""),
		PubSubTopic:     getEnv("PUBSUB_TOPIC", "birthday-events"),

		RedisURL: getEnv("REDIS_URL", ""),

		CheckHour:   hour,
		CheckMinute: minute,
		Location:    loc,

		WishChannels: splitList(getEnv("WISH_CHANNELS", "push,whatsapp,email")),

		EmailProvider:  strings.ToLower(getEnv("EMAIL_PROVIDER", "")),
		EmailFrom:      getEnv("EMAIL_FROM", ""),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "Remind Candles"),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnv("SMTP_PORT", "465"),
		SMTPUser:       getEnv("SMTP_USER", ""),
		SMTPPass:       getEnv("SMTP_PASS", ""),
		GmailClientID:  getEnv("GMAIL_CLIENT_ID", ""),
		GmailSecret:    getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefresh:   getEnv("GMAIL_REFRESH_TOKEN", ""),
		EmailJSService: getEnv("EMAILJS_SERVICE_ID", ""),
		EmailJSTmpl:    getEnv("EMAILJS_TEMPLATE_ID", ""),
		EmailJSPublic:  getEnv("EMAILJS_PUBLIC_KEY", ""),
		EmailJSPrivate: getEnv("EMAILJS_PRIVATE_KEY", ""),

		WhatsAppPhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		WhatsAppAccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppAPIVersion:    getEnv("WHATSAPP_API_VERSION", "v19.0"),
	}
}

// Validate reports configuration combinations the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}
	switch c.TokenStore {
	case "sql":
	case "firestore":
		if c.FirebaseCredentials == "" {
			errs = append(errs, errors.New("TOKEN_STORE=firestore requires FIREBASE_CREDENTIALS"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown TOKEN_STORE %q", c.TokenStore))
	}
	switch c.EmailProvider {
	case "", "smtp", "gmail", "emailjs":
	default:
		errs = append(errs, fmt.Errorf("unknown EMAIL_PROVIDER %q", c.EmailProvider))
	}
	return errors.Join(errs...)
}

// ParseClock parses an "HH:MM" time of day.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
