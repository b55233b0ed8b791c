package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries every runtime knob. Values come from the process
// environment, with a .env file honored for local runs; absent keys fall
// back to defaults rooted in the working directory.
type Config struct {
	DBPath       string
	RawMailDir   string
	OutputDir    string
	TrainingPath string

	SampleSize       int
	SampleSeed       int64
	ThresholdFloor   float64
	FreqAnomalyShare float64
	MaxPNLength      int
	SimSeparator     string

	LexiconAPIBaseURL   string
	LexiconAPIToken     string
	LexiconRateLimitRPS int
	LexiconTimeoutMs    int

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	MailListenerProvider     string
	MailListenerLabel        string
	MailListenerIntervalSec  int
	MailListenerFetchMax     int
	MailListenerProcessBatch int
	MailListenerAutoExport   bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:       envStr("MRO_DB_PATH", filepath.Join(cwd, "data", "mroparse.db")),
		RawMailDir:   envStr("MRO_RAW_MAIL_DIR", filepath.Join(cwd, "data", "raw")),
		OutputDir:    envStr("MRO_OUTPUT_DIR", filepath.Join(cwd, "out")),
		TrainingPath: envStr("MRO_TRAINING_PATH", filepath.Join(cwd, "data", "training_data.json")),

		SampleSize:       envInt("MRO_SAMPLE_SIZE", 200),
		SampleSeed:       int64(envInt("MRO_SAMPLE_SEED", 42)),
		ThresholdFloor:   envFloat("MRO_THRESHOLD_FLOOR", 0.35),
		FreqAnomalyShare: envFloat("MRO_FREQ_ANOMALY_SHARE", 0.60),
		MaxPNLength:      envInt("MRO_MAX_PN_LENGTH", 30),
		SimSeparator:     envStr("MRO_SIM_SEPARATOR", "space"),

		LexiconAPIBaseURL:   envStr("LEXICON_API_BASE_URL", ""),
		LexiconAPIToken:     envStr("LEXICON_API_TOKEN", ""),
		LexiconRateLimitRPS: envInt("LEXICON_RATE_LIMIT_RPS", 3),
		LexiconTimeoutMs:    envInt("LEXICON_TIMEOUT_MS", 30000),

		GmailClientID:     envStr("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: envStr("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  envStr("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken: envStr("GMAIL_REFRESH_TOKEN", ""),

		IMAPHost:     envStr("IMAP_HOST", ""),
		IMAPPort:     envInt("IMAP_PORT", 993),
		IMAPSecure:   envBool("IMAP_SECURE", true),
		IMAPUser:     envStr("IMAP_USER", ""),
		IMAPPassword: envStr("IMAP_PASSWORD", ""),
		IMAPMarkSeen: envBool("IMAP_MARK_SEEN", false),

		MailListenerProvider:     envStr("MAIL_LISTENER_PROVIDER", "imap"),
		MailListenerLabel:        envStr("MAIL_LISTENER_LABEL", "INBOX"),
		MailListenerIntervalSec:  envInt("MAIL_LISTENER_INTERVAL_SEC", 60),
		MailListenerFetchMax:     envInt("MAIL_LISTENER_FETCH_MAX", 20),
		MailListenerProcessBatch: envInt("MAIL_LISTENER_PROCESS_BATCH", 20),
		MailListenerAutoExport:   envBool("MAIL_LISTENER_AUTO_EXPORT", true),
	}

	return cfg, nil
}

// Require reports a usable error when a mandatory setting is blank.
func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) != "" {
		return nil
	}
	return fmt.Errorf("%s must be set", name)
}

// envStr treats a set-but-blank variable the same as an absent one.
func envStr(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	if parsed, err := strconv.Atoi(envStr(key, "")); err == nil {
		return parsed
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if parsed, err := strconv.ParseFloat(envStr(key, ""), 64); err == nil {
		return parsed
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	switch strings.ToLower(envStr(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
