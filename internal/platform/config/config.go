package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"nftgate/internal/collection"
)

// Store backends selectable through STORE_BACKEND.
const (
	BackendMemory    = "memory"
	BackendPostgres  = "postgres"
	BackendSQLServer = "sqlserver"
	BackendBolt      = "bolt"
)

// Config is the full process configuration.
type Config struct {
	Server     Server
	Store      Store
	Redis      Redis
	Kafka      Kafka
	Collection collection.Config
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	RequestTimeout time.Duration
}

// Store selects and sizes the registration store.
type Store struct {
	Backend         string
	DatabaseURL     string
	SQLServer       SQLServer
	BoltPath        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// SQLServer holds discrete SQL Server connection settings.
type SQLServer struct {
	User     string
	Password string
	Server   string
	Database string
	Port     int
}

// Redis enables the status cache when URL is set.
type Redis struct {
	URL          string
	CacheTTL     time.Duration
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka enables registration events when Brokers is set.
type Kafka struct {
	Brokers string
	Topic   string
}

// Load reads optional .env files (defaults to ".env"), then the process
// environment. Variables already set in the environment win over the file.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv so main stays lean.
func FromEnv(getenv func(string) string) (Config, error) {
	e := &env{getenv: getenv}

	cfg := Config{
		Server: Server{
			Addr:           e.str("NFTGATE_ADDR", ":8080"),
			Environment:    e.str("NFTGATE_ENV", "development"),
			LogLevel:       e.str("LOG_LEVEL", "info"),
			RequestTimeout: e.duration("REQUEST_TIMEOUT", 30*time.Second),
		},
		Store: Store{
			Backend:     strings.ToLower(e.str("STORE_BACKEND", BackendMemory)),
			DatabaseURL: e.str("DATABASE_URL", ""),
			SQLServer: SQLServer{
				User:     e.str("DB_USER", ""),
				Password: e.str("DB_PASSWORD", ""),
				Server:   e.str("DB_SERVER", ""),
				Database: e.str("DB_DATABASE", ""),
				Port:     e.integer("DB_PORT", 1433),
			},
			BoltPath:        e.str("BOLT_PATH", "data/registrations.db"),
			MaxOpenConns:    e.integer("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    e.integer("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: e.duration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			AutoMigrate:     e.boolean("AUTO_MIGRATE", false),
		},
		Redis: Redis{
			URL:          e.str("REDIS_URL", ""),
			CacheTTL:     e.duration("STATUS_CACHE_TTL", 10*time.Minute),
			PoolSize:     e.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: e.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  e.duration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			ReadTimeout:  e.duration("REDIS_READ_TIMEOUT", 500*time.Millisecond),
			WriteTimeout: e.duration("REDIS_WRITE_TIMEOUT", 500*time.Millisecond),
		},
		Kafka: Kafka{
			Brokers: e.str("KAFKA_BROKERS", ""),
			Topic:   e.str("KAFKA_TOPIC", "nftgate.registrations"),
		},
		Collection: collection.Config{
			ContractAddress: e.str("NFT_CONTRACT_ADDRESS", ""),
			Name:            e.str("NFT_COLLECTION_NAME", ""),
			Description:     e.str("NFT_COLLECTION_DESCRIPTION", ""),
			Image:           e.str("NFT_COLLECTION_IMAGE", ""),
			Chain:           e.str("NFT_CHAIN", collection.DefaultChain),
			MaxSupply:       uint64(e.integer("NFT_MAX_SUPPLY", 0)),
			ClaimPriceWei:   e.str("NFT_CLAIM_PRICE_WEI", ""),
			RoyaltyBps:      uint32(e.integer("NFT_ROYALTY_BPS", 0)),
		},
	}

	if len(e.errs) > 0 {
		return Config{}, errors.Join(e.errs...)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_BACKEND=postgres")
		}
	case BackendSQLServer:
		var missing []string
		for name, v := range map[string]string{
			"DB_USER":     c.Store.SQLServer.User,
			"DB_PASSWORD": c.Store.SQLServer.Password,
			"DB_SERVER":   c.Store.SQLServer.Server,
			"DB_DATABASE": c.Store.SQLServer.Database,
		} {
			if v == "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return fmt.Errorf("missing SQL Server settings: %s", strings.Join(missing, ", "))
		}
	case BackendBolt:
		if c.Store.BoltPath == "" {
			return errors.New("BOLT_PATH is required when STORE_BACKEND=bolt")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	return nil
}

type env struct {
	getenv func(string) string
	errs   []error
}

func (e *env) str(key, def string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(e.getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return def
	}
	return d
}

func (e *env) integer(key string, def int) int {
	raw := strings.TrimSpace(e.getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid non-negative integer %q", key, raw))
		return def
	}
	return n
}

func (e *env) boolean(key string, def bool) bool {
	raw := strings.TrimSpace(e.getenv(key))
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid boolean %q", key, raw))
		return def
	}
	return b
}
