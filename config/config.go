package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"airbnb-monitor/models"
	"airbnb-monitor/utils"
)

// Pre-flight configuration errors. These are the only fatal errors in
// steady-state operation: both abort the run before any network activity.
var (
	ErrNoSources          = errors.New("config: no search URLs configured (set AIRBNB_SEARCH_URL or AIRBNB_SEARCH_URL_1..10)")
	ErrMissingCredentials = errors.New("config: missing delivery credentials (SENDER_EMAIL, SENDER_PASSWORD, RECIPIENT_EMAIL)")
)

// Store backend selectors.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// maxNumberedSources is the highest AIRBNB_SEARCH_URL_N index probed.
const maxNumberedSources = 10

// Config holds all application configuration loaded from environment variables.
//
// Operational invariant: at most one run may execute against a given seen-set
// store at a time. The store is read once at run start and written once at run
// end; concurrent runs need external mutual exclusion (a run lock in the
// scheduler).
type Config struct {
	Sources []models.SearchSource

	SenderEmail    string
	SenderPassword string
	RecipientEmail string
	SMTPHost       string
	SMTPPort       int

	SeenStore    string
	SeenFilePath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	SourceDelay        time.Duration
	PageLoadWait       time.Duration
	ReadyTimeout       time.Duration
	RunTimeout         time.Duration
	MaxListingsPerPage int
	MaxRetries         int

	SnapshotCSVPath string
	ChromeBin       string
	Debug           bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		Sources: loadSources(),

		SenderEmail:    getEnv("SENDER_EMAIL", ""),
		SenderPassword: getEnv("SENDER_PASSWORD", ""),
		RecipientEmail: getEnv("RECIPIENT_EMAIL", ""),
		SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       getEnvInt("SMTP_PORT", 587),

		SeenStore:    getEnv("SEEN_STORE", StoreFile),
		SeenFilePath: getEnv("SEEN_FILE_PATH", "seen_listings.json"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "monitor"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "monitor123"),
		PostgresDB:       getEnv("POSTGRES_DB", "airbnb_monitor"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		SourceDelay:        getEnvSeconds("SOURCE_DELAY_SECONDS", 10),
		PageLoadWait:       getEnvSeconds("PAGE_LOAD_WAIT_SECONDS", 15),
		ReadyTimeout:       getEnvSeconds("READY_TIMEOUT_SECONDS", 20),
		RunTimeout:         time.Duration(getEnvInt("RUN_TIMEOUT_MINUTES", 15)) * time.Minute,
		MaxListingsPerPage: getEnvInt("MAX_LISTINGS_PER_PAGE", 20),
		MaxRetries:         getEnvInt("MAX_RETRIES", 2),

		SnapshotCSVPath: getEnv("SNAPSHOT_CSV_PATH", ""),
		ChromeBin:       getEnv("CHROME_BIN", ""),
		Debug:           getEnvBool("DEBUG", false),
	}
}

// Validate runs the pre-flight checks. A failure here aborts the run before
// any network activity is attempted.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}
	if c.SenderEmail == "" || c.SenderPassword == "" || c.RecipientEmail == "" {
		return ErrMissingCredentials
	}
	return nil
}

// DSN returns the PostgreSQL connection string for the postgres store backend.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// loadSources reads AIRBNB_SEARCH_URL plus AIRBNB_SEARCH_URL_1..10,
// deduplicates preserving first-seen order, and labels the surviving sources
// "Search 1", "Search 2", ... in polling order.
func loadSources() []models.SearchSource {
	urls := utils.NewOrderedSet()

	if base := os.Getenv("AIRBNB_SEARCH_URL"); base != "" {
		urls.Add(base)
	}
	for i := 1; i <= maxNumberedSources; i++ {
		if u := os.Getenv(fmt.Sprintf("AIRBNB_SEARCH_URL_%d", i)); u != "" {
			urls.Add(u)
		}
	}

	unique := urls.Values()
	sources := make([]models.SearchSource, 0, len(unique))
	for i, u := range unique {
		sources = append(sources, models.SearchSource{
			URL:   u,
			Label: fmt.Sprintf("Search %d", i+1),
		})
	}
	return sources
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
