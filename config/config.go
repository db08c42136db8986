package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	// Proxies whose forwarding headers are honoured for the client IP. Empty trusts none.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	// Record store (Airtable-compatible REST API).
	AirtableAPIURL string        `mapstructure:"AIRTABLE_API_URL"`
	AirtableToken  string        `mapstructure:"AIRTABLE_TOKEN"`
	AirtableBaseID string        `mapstructure:"AIRTABLE_BASE_ID"`
	AirtableTable  string        `mapstructure:"AIRTABLE_TABLE"`
	StoreTimeout   time.Duration `mapstructure:"STORE_TIMEOUT"`

	// Property catalog (Google Sheets).
	GoogleSAKey         string `mapstructure:"GOOGLE_SA_KEY"`
	GoogleSpreadsheetID string `mapstructure:"GOOGLE_SPREADSHEET_ID"`
	SheetRange          string `mapstructure:"SHEET_RANGE"`

	// Civic calendar and business rules.
	CivicTZName         string `mapstructure:"CIVIC_TZ_NAME"`
	CivicUTCOffsetHours int    `mapstructure:"CIVIC_UTC_OFFSET_HOURS"`
	OpenHour            int    `mapstructure:"OPEN_HOUR"`
	CloseHour           int    `mapstructure:"CLOSE_HOUR"`
	ClosedWeekday       int    `mapstructure:"CLOSED_WEEKDAY"`
	UpdateGuardFailOpen bool   `mapstructure:"UPDATE_GUARD_FAIL_OPEN"`

	// Lookup session tokens.
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	LookupTokenTTL time.Duration `mapstructure:"LOOKUP_TOKEN_TTL"`

	// Redis configuration. An empty address falls back to in-process slot locks.
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisLockDB   int           `mapstructure:"REDIS_LOCK_DB"`
	SlotLockTTL   time.Duration `mapstructure:"SLOT_LOCK_TTL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	enforceSlotLockTTL(&AppConfig)

	if AppConfig.JWTSecret == "" {
		if IsProduction() {
			log.Fatal("JWT_SECRET must be set in production")
		}
		AppConfig.JWTSecret = "viewingdesk-dev-secret"
	}
}

// setDefaults registers a default for every key so AutomaticEnv picks them up on Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("TRUSTED_PROXIES", []string{})

	v.SetDefault("AIRTABLE_API_URL", "https://api.airtable.com")
	v.SetDefault("AIRTABLE_TOKEN", "")
	v.SetDefault("AIRTABLE_BASE_ID", "")
	v.SetDefault("AIRTABLE_TABLE", "内見予約")
	v.SetDefault("STORE_TIMEOUT", 10*time.Second)

	v.SetDefault("GOOGLE_SA_KEY", "")
	v.SetDefault("GOOGLE_SPREADSHEET_ID", "")
	v.SetDefault("SHEET_RANGE", "物件一覧!A:M")

	v.SetDefault("CIVIC_TZ_NAME", "JST")
	v.SetDefault("CIVIC_UTC_OFFSET_HOURS", 9)
	v.SetDefault("OPEN_HOUR", 10)
	v.SetDefault("CLOSE_HOUR", 16)
	v.SetDefault("CLOSED_WEEKDAY", int(time.Wednesday))
	v.SetDefault("UPDATE_GUARD_FAIL_OPEN", true)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("LOOKUP_TOKEN_TTL", 30*time.Minute)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_LOCK_DB", 0)
	v.SetDefault("SLOT_LOCK_TTL", MinSlotLockTTL(10*time.Second))
}

// slotLockMargin covers the in-process work between the two store calls of a locked section.
const slotLockMargin = 5 * time.Second

// MinSlotLockTTL is the shortest slot lock that outlives an availability query plus a write,
// each bounded by storeTimeout.
func MinSlotLockTTL(storeTimeout time.Duration) time.Duration {
	return 2*storeTimeout + slotLockMargin
}

func enforceSlotLockTTL(cfg *Config) {
	if floor := MinSlotLockTTL(cfg.StoreTimeout); cfg.SlotLockTTL < floor {
		log.Printf("SLOT_LOCK_TTL %s cannot cover two store calls of %s; using %s", cfg.SlotLockTTL, cfg.StoreTimeout, floor)
		cfg.SlotLockTTL = floor
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
