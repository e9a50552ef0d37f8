package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Board      BoardConfig
	Simulation SimulationConfig
	Qdrant     QdrantConfig
	Gemini     GeminiConfig
	Storage    StorageConfig
	Worker     WorkerConfig
}

type ServerConfig struct {
	Port            string        `env:"PORT"             env-default:"3000"`
	Env             string        `env:"ENV"              env-default:"development"`
	AppName         string        `env:"APP_NAME"         env-default:"TalentFlow API"`
	BodyLimit       int           `env:"BODY_LIMIT"       env-default:"12582912"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT"     env-default:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	CORSOrigins     string        `env:"CORS_ORIGINS"     env-default:"*"`
}

type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER"      env-default:"sqlite"`
	SQLitePath string `env:"DB_SQLITE_PATH" env-default:"./talentflow.db"`
	Host       string `env:"DB_HOST"        env-default:"localhost"`
	Port       string `env:"DB_PORT"        env-default:"5432"`
	User       string `env:"DB_USER"        env-default:"postgres"`
	Password   string `env:"DB_PASSWORD"    env-default:"postgres"`
	DBName     string `env:"DB_NAME"        env-default:"talentflow"`
}

type BoardConfig struct {
	ActivationDistance float64 `env:"BOARD_ACTIVATION_DISTANCE" env-default:"8"`
	DefaultActor       string  `env:"BOARD_DEFAULT_ACTOR"       env-default:"recruiter"`
	NotificationBuffer int     `env:"NOTIFICATION_BUFFER"       env-default:"128"`
	NotificationKeep   int     `env:"NOTIFICATION_KEEP"         env-default:"50"`
}

// SimulationConfig drives the fault injector in front of the candidate store.
type SimulationConfig struct {
	Enabled          bool          `env:"SIMULATE_NETWORK"      env-default:"false"`
	WriteFailureRate float64       `env:"SIMULATE_FAILURE_RATE" env-default:"0.08"`
	MinLatency       time.Duration `env:"SIMULATE_MIN_LATENCY"  env-default:"200ms"`
	MaxLatency       time.Duration `env:"SIMULATE_MAX_LATENCY"  env-default:"1200ms"`
	Seed             uint64        `env:"SIMULATE_SEED"         env-default:"0"`
}

type QdrantConfig struct {
	URL        string `env:"QDRANT_URL"         env-default:"localhost:6334"`
	APIKey     string `env:"QDRANT_API_KEY"`
	Collection string `env:"QDRANT_COLLECTION"  env-default:"talentflow_resumes"`
	VectorSize uint64 `env:"QDRANT_VECTOR_SIZE" env-default:"768"`
}

type GeminiConfig struct {
	APIKey            string `env:"GEMINI_API_KEY"`
	ChatModel         string `env:"GEMINI_CHAT_MODEL"      env-default:"gemini-2.5-flash"`
	EmbeddingModel    string `env:"GEMINI_EMBEDDING_MODEL" env-default:"text-embedding-004"`
	RequestsPerMinute int    `env:"GEMINI_RPM"             env-default:"15"`
}

type StorageConfig struct {
	UploadPath  string `env:"UPLOAD_PATH"   env-default:"./uploads"`
	MaxFileSize int64  `env:"MAX_FILE_SIZE" env-default:"10485760"`
}

type WorkerConfig struct {
	Concurrency       int           `env:"WORKER_CONCURRENCY"   env-default:"3"`
	QueueSize         int           `env:"WORKER_QUEUE_SIZE"    env-default:"100"`
	PollInterval      time.Duration `env:"WORKER_POLL_INTERVAL" env-default:"10s"`
	RetryMaxAttempts  int           `env:"RETRY_MAX_ATTEMPTS"   env-default:"3"`
	RetryInitialDelay time.Duration `env:"RETRY_INITIAL_DELAY"  env-default:"2s"`
}

// Load reads .env when present, then the process environment, falling back
// to the defaults above.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and defaults.")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid config: DB_DRIVER must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Board.ActivationDistance < 0 {
		return fmt.Errorf("invalid config: BOARD_ACTIVATION_DISTANCE must be >= 0")
	}
	if c.Simulation.WriteFailureRate < 0 || c.Simulation.WriteFailureRate > 1 {
		return fmt.Errorf("invalid config: SIMULATE_FAILURE_RATE must be within [0, 1]")
	}
	if c.Simulation.MaxLatency < c.Simulation.MinLatency {
		return fmt.Errorf("invalid config: SIMULATE_MAX_LATENCY must be >= SIMULATE_MIN_LATENCY")
	}
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("invalid config: WORKER_CONCURRENCY must be >= 1")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// AIEnabled reports whether resume skill extraction and matching can run.
func (c *Config) AIEnabled() bool {
	return c.Gemini.APIKey != ""
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}
