package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "playauthor.cfg.json"

// EditorConfig holds stage and authoring settings.
type EditorConfig struct {
	StageWidth          float64
	StageHeight         float64
	CourtType           string
	SnapToGrid          bool
	GridStep            float64
	TokenRadius         float64
	DefaultArrowLength  float64
	CaptureRadiusFactor float64
}

// PlaybackConfig holds animation timing.
type PlaybackConfig struct {
	BaseDuration  time.Duration
	Speed         float64
	FrameInterval time.Duration
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings. An empty Path keeps
// the database in memory and dumps it to DumpPath periodically.
type SQLiteConfig struct {
	Path         string
	DumpPath     string
	DumpInterval time.Duration
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Type   string
	Memory MemoryConfig
	SQLite SQLiteConfig
}

// DBConfig holds Postgres connection settings.
type DBConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled        bool
	ServiceName    string
	BatchTimeout   time.Duration
	Endpoint       string
	Insecure       bool
	MetricInterval time.Duration
}

// SetDefaults registers every default value with viper.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("editor.stageWidth", 1200)
	viper.SetDefault("editor.stageHeight", 760)
	viper.SetDefault("editor.courtType", "half")
	viper.SetDefault("editor.snapToGrid", true)
	viper.SetDefault("editor.gridStep", 10)
	viper.SetDefault("editor.tokenRadius", 18)
	viper.SetDefault("editor.defaultArrowLength", 200)
	viper.SetDefault("editor.captureRadiusFactor", 1.2)

	viper.SetDefault("playback.baseDuration", "900ms")
	viper.SetDefault("playback.speed", 1.0)
	viper.SetDefault("playback.frameInterval", "16ms")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./plays")
	viper.SetDefault("storage.memory.compressOutput", false)
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpPath", "./plays.db")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "plays")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "playauthor")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
	viper.SetDefault("otel.metricInterval", "15s")
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// LoadOrDefault behaves like Load but treats a missing config file as an
// empty one.
func LoadOrDefault(configDir string) error {
	err := Load(configDir)
	var notFound viper.ConfigFileNotFoundError
	if err != nil && errors.As(err, &notFound) {
		return nil
	}
	return err
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetEditorConfig returns the stage and authoring settings.
func GetEditorConfig() EditorConfig {
	return EditorConfig{
		StageWidth:          viper.GetFloat64("editor.stageWidth"),
		StageHeight:         viper.GetFloat64("editor.stageHeight"),
		CourtType:           viper.GetString("editor.courtType"),
		SnapToGrid:          viper.GetBool("editor.snapToGrid"),
		GridStep:            viper.GetFloat64("editor.gridStep"),
		TokenRadius:         viper.GetFloat64("editor.tokenRadius"),
		DefaultArrowLength:  viper.GetFloat64("editor.defaultArrowLength"),
		CaptureRadiusFactor: viper.GetFloat64("editor.captureRadiusFactor"),
	}
}

// GetPlaybackConfig returns the animation timing settings.
func GetPlaybackConfig() PlaybackConfig {
	return PlaybackConfig{
		BaseDuration:  viper.GetDuration("playback.baseDuration"),
		Speed:         viper.GetFloat64("playback.speed"),
		FrameInterval: viper.GetDuration("playback.frameInterval"),
	}
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
	}
}

// GetDBConfig returns the Postgres connection settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:        viper.GetBool("otel.enabled"),
		ServiceName:    viper.GetString("otel.serviceName"),
		BatchTimeout:   viper.GetDuration("otel.batchTimeout"),
		Endpoint:       viper.GetString("otel.endpoint"),
		Insecure:       viper.GetBool("otel.insecure"),
		MetricInterval: viper.GetDuration("otel.metricInterval"),
	}
}
