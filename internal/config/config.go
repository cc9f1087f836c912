package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	DBDSN   string
	LogFile string
	Env     string

	Import ImportConfig
	Fetch  FetchConfig
}

// ImportConfig holds the pricing constants and pacing of the bulk importer.
type ImportConfig struct {
	Delay            time.Duration
	USDToNOK         float64
	EURToNOK         float64
	GBPToNOK         float64
	Margin           float64
	CompareAtMarkup  float64
	DefaultBasePrice float64 // NOK
	LowPriceUSD      float64
}

type FetchConfig struct {
	Timeout       time.Duration
	Attempts      int
	UserAgent     string
	RenderEnabled bool
	RenderTimeout time.Duration
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

func Load() Config {
	// .env is optional; real environment wins.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] could not read .env: %v", err)
	}

	cfg := Config{
		Port:    str("PORT", "8080"),
		DBDSN:   str("DB_DSN", "bookbright.db"),
		LogFile: str("LOG_FILE", "./bookbright.log"),
		Env:     str("APP_ENV", "development"),
		Import: ImportConfig{
			Delay:            dur("IMPORT_DELAY", 2*time.Second),
			USDToNOK:         num("USD_NOK_RATE", 10.5),
			EURToNOK:         num("EUR_NOK_RATE", 11.7),
			GBPToNOK:         num("GBP_NOK_RATE", 13.6),
			Margin:           num("PRICE_MARGIN", 2.5),
			CompareAtMarkup:  num("COMPARE_AT_MARKUP", 1.3),
			DefaultBasePrice: num("DEFAULT_BASE_PRICE_NOK", 199),
			LowPriceUSD:      num("LOW_PRICE_USD", 1.0),
		},
		Fetch: FetchConfig{
			Timeout:       dur("FETCH_TIMEOUT", 20*time.Second),
			Attempts:      integer("FETCH_ATTEMPTS", 3),
			UserAgent:     str("FETCH_USER_AGENT", defaultUserAgent),
			RenderEnabled: boolean("RENDER_ENABLED", false),
			RenderTimeout: dur("RENDER_TIMEOUT", 45*time.Second),
		},
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s APP_ENV=%s IMPORT_DELAY=%s USD_NOK_RATE=%.2f RENDER_ENABLED=%t",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.Env, cfg.Import.Delay, cfg.Import.USDToNOK, cfg.Fetch.RenderEnabled)
	return cfg
}

// Defaults returns the configuration Load would produce with an empty environment.
func Defaults() Config {
	return Config{
		Port:   "8080",
		DBDSN:  "bookbright.db",
		Env:    "development",
		Import: ImportConfig{Delay: 2 * time.Second, USDToNOK: 10.5, EURToNOK: 11.7, GBPToNOK: 13.6, Margin: 2.5, CompareAtMarkup: 1.3, DefaultBasePrice: 199, LowPriceUSD: 1.0},
		Fetch:  FetchConfig{Timeout: 20 * time.Second, Attempts: 3, UserAgent: defaultUserAgent, RenderTimeout: 45 * time.Second},
	}
}

func str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func num(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Printf("[config] ignoring %s=%q: not a positive number", key, v)
		return def
	}
	return f
}

func integer(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		log.Printf("[config] ignoring %s=%q: not a positive integer", key, v)
		return def
	}
	return n
}

func dur(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Printf("[config] ignoring %s=%q: not a duration", key, v)
		return def
	}
	return d
}

func boolean(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
