package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrWebhookNotConfigured reports a missing or malformed N8N_WEBHOOK_URL.
var ErrWebhookNotConfigured = errors.New("N8N_WEBHOOK_URL is missing or invalid")

// Upstream holds the webhook settings shared by the proxy and its client.
type Upstream struct {
	WebhookURL     string
	Timeout        time.Duration
	VerboseLogging bool
}

// Documents locates the reference document files.
type Documents struct {
	StyleGuidePath string
	GlossaryPath   string
}

// API describes HTTP-layer configuration.
type API struct {
	Upstream
	Documents
	BindAddr       string
	RequestTimeout time.Duration
}

// LoadDotEnv loads variables from the given .env files (".env" when none are given).
// Missing files are ignored and variables already set in the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// LoadAPI builds an API config from environment variables.
// The webhook URL is not checked here; see ParseWebhookURL.
func LoadAPI() (*API, error) {
	c := &API{
		Upstream: Upstream{
			WebhookURL:     strings.TrimSpace(os.Getenv("N8N_WEBHOOK_URL")),
			Timeout:        getDuration("UPSTREAM_TIMEOUT", "120s"),
			VerboseLogging: getBool("VERBOSE_LOGGING", false),
		},
		Documents: Documents{
			StyleGuidePath: getEnv("STYLE_GUIDE_PATH", "style-guide.md"),
			GlossaryPath:   getEnv("GLOSSARY_PATH", "glossary.md"),
		},
		BindAddr:       getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		RequestTimeout: getDuration("API_REQUEST_TIMEOUT", "180s"),
	}

	if c.Timeout <= 0 {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if c.RequestTimeout < c.Timeout {
		return nil, fmt.Errorf("API_REQUEST_TIMEOUT cannot be shorter than UPSTREAM_TIMEOUT")
	}
	if c.StyleGuidePath == c.GlossaryPath {
		return nil, fmt.Errorf("STYLE_GUIDE_PATH and GLOSSARY_PATH must differ")
	}

	return c, nil
}

// ParseWebhookURL checks that raw is an absolute http(s) URL.
func ParseWebhookURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrWebhookNotConfigured
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebhookNotConfigured, err)
	}
	if !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrWebhookNotConfigured, raw)
	}
	return u, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}
