package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/gokatarajesh/live-match-dashboard/internal/model"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"live-match-dashboard"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:3001"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres   Postgres
	Redis      Redis
	AMQP       AMQP
	Simulation Simulation
	WebSocket  WebSocket
	CORS       CORS
}

// Postgres captures connection info for the SQL database. An empty host
// disables the persistence routes.
type Postgres struct {
	Host     string `env:"PG_HOST" envDefault:""`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER" envDefault:""`
	Password string `env:"PG_PASSWORD" envDefault:""`
	Database string `env:"PG_DATABASE" envDefault:""`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// Enabled reports whether a database was configured.
func (p Postgres) Enabled() bool { return p.Host != "" }

// DSN returns a key/value connection string accepted by pgx.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// Redis holds snapshot store configuration. An empty address disables it.
type Redis struct {
	Addr        string        `env:"REDIS_ADDR" envDefault:""`
	DB          int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize    int           `env:"REDIS_POOL_SIZE" envDefault:"20"`
	SnapshotTTL time.Duration `env:"SIM_SNAPSHOT_TTL" envDefault:"24h"`
}

// AMQP configures the event mirror. An empty URL disables it.
type AMQP struct {
	URL          string `env:"AMQP_URL" envDefault:""`
	Exchange     string `env:"AMQP_EXCHANGE" envDefault:"match.events"`
	IncludeTicks bool   `env:"AMQP_INCLUDE_TICKS" envDefault:"false"`
	Buffer       int    `env:"AMQP_BUFFER" envDefault:"1024"`
}

// Simulation holds the defaults applied to starts without a config.
type Simulation struct {
	TimeMultiplier float64 `env:"SIM_TIME_MULTIPLIER" envDefault:"60"`
	MaxDuration    float64 `env:"SIM_MAX_DURATION" envDefault:"90"`
	AutoStart      bool    `env:"SIM_AUTO_START" envDefault:"false"`
	TimelineDir    string  `env:"SIM_TIMELINE_DIR" envDefault:""`
}

// WebSocket tunes per-connection buffering.
type WebSocket struct {
	SendQueue   int           `env:"WS_SEND_QUEUE" envDefault:"256"`
	ReadTimeout time.Duration `env:"WS_READ_TIMEOUT" envDefault:"60s"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Simulation.TimeMultiplier < model.MinTimeMultiplier {
		return nil, fmt.Errorf("parse config: SIM_TIME_MULTIPLIER must be at least %g", model.MinTimeMultiplier)
	}
	return cfg, nil
}
