package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. WIP_SERVER_PORT.
const EnvPrefix = "WIP"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Workflow  WorkflowConfig  `yaml:"workflow" envconfig:"WORKFLOW"`
	Storage   StorageConfig   `yaml:"storage" envconfig:"STORAGE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" validate:"min=1"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	// Realm is announced in Basic auth challenges.
	Realm string `yaml:"realm" envconfig:"REALM"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system paths configuration. Relative paths
// are resolved against the executable directory.
type PathsConfig struct {
	ExecutableDir string `yaml:"executable_dir" envconfig:"EXECUTABLE_DIR"`
	DataDir       string `yaml:"data_dir" envconfig:"DATA_DIR"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	UsersFile     string `yaml:"users_file" envconfig:"USERS_FILE"`
}

// WorkflowConfig holds the reconciliation policy knobs.
type WorkflowConfig struct {
	// ExpectedExports is how many text exports make a complete merge batch.
	ExpectedExports int `yaml:"expected_exports" envconfig:"EXPECTED_EXPORTS" validate:"gte=0"`
	// HistoryRowCeiling triggers a rollover of plain histories; 0 disables it.
	HistoryRowCeiling int    `yaml:"history_row_ceiling" envconfig:"HISTORY_ROW_CEILING" validate:"gte=0"`
	HistoryMode       string `yaml:"history_mode" envconfig:"HISTORY_MODE" validate:"oneof=area flat"`
	UnmappedArea      string `yaml:"unmapped_area" envconfig:"UNMAPPED_AREA" validate:"required"`
	AuditSheet        bool   `yaml:"audit_sheet" envconfig:"AUDIT_SHEET"`
	HistoryCSV        bool   `yaml:"history_csv" envconfig:"HISTORY_CSV"`
	MaxUploadBytes    int64  `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
}

// StorageConfig selects where workflow artifacts are published.
type StorageConfig struct {
	Backend              string        `yaml:"backend" envconfig:"BACKEND" validate:"oneof=local drive none"`
	DriveCredentialsFile string        `yaml:"drive_credentials_file" envconfig:"DRIVE_CREDENTIALS_FILE"`
	DriveParentFolderID  string        `yaml:"drive_parent_folder_id" envconfig:"DRIVE_PARENT_FOLDER_ID"`
	RemoteFolder         string        `yaml:"remote_folder" envconfig:"REMOTE_FOLDER"`
	UploadTimeout        time.Duration `yaml:"upload_timeout" envconfig:"UPLOAD_TIMEOUT"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName     string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TracingExporter string `yaml:"tracing_exporter" envconfig:"TRACING_EXPORTER" validate:"oneof=stdout none"`
	MetricsEnabled  bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
}

// Load builds the configuration from defaults, then the YAML file (if
// any), then WIP_* environment variables, which take precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit YAML file; an empty path skips it.
func LoadFile(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file at filePath onto cfg.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// resolvePaths fills in the executable directory when it is not configured.
func (c *Config) resolvePaths() error {
	if c.Paths.ExecutableDir != "" {
		return nil
	}
	dir, err := executableDir()
	if err != nil {
		return err
	}
	c.Paths.ExecutableDir = dir
	return nil
}

// ResolvedPaths returns the directory layout this configuration describes.
func (c *Config) ResolvedPaths() *Paths {
	return NewPaths(c.Paths)
}

// validate validates the configuration
func (c *Config) validate() error {
	c.Workflow.HistoryMode = strings.ToLower(strings.TrimSpace(c.Workflow.HistoryMode))
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))

	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Storage.Backend == "drive" && c.Storage.DriveCredentialsFile == "" {
		return fmt.Errorf("storage backend drive requires a credentials file")
	}

	// Logs are always structured.
	c.Logging.Format = "json"
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = filepath.Join("logs", "app.log")
	}
	return nil
}

// getConfigFilePath returns the config file named by WIP_CONFIG_FILE, or
// the first one found in the usual locations, or "".
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
			Realm: AppName,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: filepath.Join("logs", "app.log"),
		},
		Paths: PathsConfig{
			DataDir:   DefaultDataDir,
			LogsDir:   DefaultLogsDir,
			UsersFile: DefaultUsersFile,
		},
		Workflow: WorkflowConfig{
			ExpectedExports:   DefaultExpectedExports,
			HistoryRowCeiling: DefaultHistoryRowCeiling,
			HistoryMode:       "area",
			UnmappedArea:      "unmapped",
			AuditSheet:        true,
			HistoryCSV:        true,
			MaxUploadBytes:    DefaultMaxUploadBytes,
		},
		Storage: StorageConfig{
			Backend:       "local",
			RemoteFolder:  DefaultRemoteFolder,
			UploadTimeout: DefaultUploadTimeout,
		},
		Telemetry: TelemetryConfig{
			ServiceName:     "wip-reconciliation",
			TracingExporter: "none",
			MetricsEnabled:  true,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}
