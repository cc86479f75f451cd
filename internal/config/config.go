package config

import (
	"time"

	"github.com/rl1809/mintmarket/internal/core/domain"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Market    MarketConfig    `yaml:"market"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP and gRPC listener settings.
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr"        env:"SERVER_HTTP_ADDR"        env-default:":8080"`
	GRPCAddr        string        `yaml:"grpc_addr"        env:"SERVER_GRPC_ADDR"        env-default:":50051"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

const (
	BackendMemory  = "memory"
	BackendLevelDB = "leveldb"
	BackendMySQL   = "mysql"
	BackendSQLite  = "sqlite"
)

// LedgerConfig selects where market state is kept. For sqlite an empty DSN
// is derived from Path.
type LedgerConfig struct {
	Backend       string        `yaml:"backend"         env:"LEDGER_BACKEND"         env-default:"memory"`
	Path          string        `yaml:"path"            env:"LEDGER_PATH"            env-default:"./data/ledger"`
	DSN           string        `yaml:"dsn"             env:"LEDGER_DSN"`
	SharedIDSpace bool          `yaml:"shared_id_space" env:"LEDGER_SHARED_ID_SPACE" env-default:"false"`
	LockWait      time.Duration `yaml:"lock_wait"       env:"LEDGER_LOCK_WAIT"       env-default:"10s"`
}

// RedisConfig enables request de-duplication and the event stream.
type RedisConfig struct {
	Enabled        bool          `yaml:"enabled"         env:"REDIS_ENABLED"         env-default:"false"`
	Addr           string        `yaml:"addr"            env:"REDIS_ADDR"            env-default:"localhost:6379"`
	Password       string        `yaml:"password"        env:"REDIS_PASSWORD"`
	DB             int           `yaml:"db"              env:"REDIS_DB"              env-default:"0"`
	PoolSize       int           `yaml:"pool_size"       env:"REDIS_POOL_SIZE"       env-default:"100"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl" env:"REDIS_IDEMPOTENCY_TTL" env-default:"24h"`
	Stream         string        `yaml:"stream"          env:"REDIS_STREAM"          env-default:"mintmarket:events"`
}

// AuthConfig holds bearer token settings and the privileged addresses.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"AUTH_JWT_SECRET" env-required:"true"`
	JWTIssuer string        `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER" env-default:"mintmarket"`
	TokenTTL  time.Duration `yaml:"token_ttl"  env:"AUTH_TOKEN_TTL"  env-default:"1h"`
	AdminsRaw string        `yaml:"admins"     env:"AUTH_ADMINS"`

	// Admins is parsed from AdminsRaw during validation.
	Admins []domain.Address `yaml:"-" env:"-"`
}

// MarketConfig holds marketplace service settings. The event settings drive
// the relay from the ledger outbox to the publishers.
type MarketConfig struct {
	Address           string        `yaml:"address"             env:"MARKET_ADDRESS"             env-default:"0x00000000000000000000000000000000006d6b74"`
	ResolveCacheTTL   time.Duration `yaml:"resolve_cache_ttl"   env:"MARKET_RESOLVE_CACHE_TTL"   env-default:"10m"`
	EventBatchSize    int           `yaml:"event_batch_size"    env:"MARKET_EVENT_BATCH_SIZE"    env-default:"100"`
	EventPollInterval time.Duration `yaml:"event_poll_interval" env:"MARKET_EVENT_POLL_INTERVAL" env-default:"1s"`
	EventRetryDelay   time.Duration `yaml:"event_retry_delay"   env:"MARKET_EVENT_RETRY_DELAY"   env-default:"2s"`
}

// RateLimitConfig bounds request rate per client address.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"   env:"RATE_LIMIT_RPS"   env-default:"50"`
	Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"100"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"` // json or text
}
