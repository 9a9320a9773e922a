package config

import (
	"io"
	"log"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

type Config struct {
	API       APIConfig
	Extract   ExtractConfig
	Database  DatabaseConfig
	Paths     PathsConfig
	Warehouse WarehouseConfig
	Log       LogConfig
	Schedule  ScheduleConfig
	Env       string
}

// APIConfig describes the exchange-rate endpoint. Key comes from API_KEY.
type APIConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Key      string        `mapstructure:"key"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Currency string        `mapstructure:"currency"`
}

type ExtractConfig struct {
	Backoff BackoffConfig
}

type BackoffConfig struct {
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`
	RetryMax     int           `mapstructure:"retry_max"`
}

// DatabaseConfig holds the MySQL source settings, bound to the DB_* variables.
type DatabaseConfig struct {
	Host           string        `mapstructure:"host"`
	User           string        `mapstructure:"user"`
	Pass           string        `mapstructure:"pass"`
	Port           int           `mapstructure:"port"`
	Name           string        `mapstructure:"name"`
	Tables         []string      `mapstructure:"tables"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// PathsConfig names the directories of the stage contract.
type PathsConfig struct {
	DataLake       string `mapstructure:"data_lake"`
	Extracted      string `mapstructure:"extracted"`
	Staging1       string `mapstructure:"staging_1"`
	Staging2       string `mapstructure:"staging_2"`
	Mart           string `mapstructure:"mart"`
	QualityReports string `mapstructure:"quality_reports"`
	Visualizations string `mapstructure:"visualizations"`
}

type WarehouseConfig struct {
	Enabled           bool     `mapstructure:"enabled"`
	Path              string   `mapstructure:"path"`
	ConnInitFnQueries []string `mapstructure:"conn_init_fn_queries"`
	PostLoadQueries   []string `mapstructure:"post_load_queries"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ScheduleConfig struct {
	Cron string `mapstructure:"cron"`
}

// envBindings maps config keys to the process environment.
var envBindings = map[string]string{
	"api.key":       "API_KEY",
	"database.host": "DB_HOST",
	"database.user": "DB_USER",
	"database.pass": "DB_PASS",
	"database.port": "DB_PORT",
	"database.name": "DB_NAME",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://openexchangerates.org/api/latest.json")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.currency", "EGP")

	v.SetDefault("extract.backoff.retry_wait_min", time.Second)
	v.SetDefault("extract.backoff.retry_wait_max", 30*time.Second)
	v.SetDefault("extract.backoff.retry_max", 0)

	v.SetDefault("database.port", 3306)
	v.SetDefault("database.tables", []string{"orders", "order_items"})
	v.SetDefault("database.connect_timeout", 10*time.Second)

	v.SetDefault("paths.data_lake", "DataLake")
	v.SetDefault("paths.extracted", "extracted")
	v.SetDefault("paths.staging_1", "staging_1")
	v.SetDefault("paths.staging_2", "staging_2")
	v.SetDefault("paths.mart", "Information_Mart")
	v.SetDefault("paths.quality_reports", "quality_reports")
	v.SetDefault("paths.visualizations", "Visualizations")

	v.SetDefault("warehouse.enabled", false)
	v.SetDefault("warehouse.path", "Information_Mart/star_schema.duckdb")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("schedule.cron", "0 2 * * *")
}

// NewConfig loads the configuration from the provided base config reader
// and merges it with the environment-specific configuration. Either reader
// may be nil. Credentials are read from the process environment.
func NewConfig(baseConfigReader io.Reader, envConfigReader io.Reader, env string) (*Config, error) {
	if env == "" { // Use the provided 'env' or default to "dev"
		env = "dev"
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	for key, name := range envBindings {
		if err := v.BindEnv(key, name); err != nil {
			return nil, eris.Wrapf(err, "error binding %s", name)
		}
	}

	if baseConfigReader != nil {
		if err := v.ReadConfig(baseConfigReader); err != nil {
			return nil, eris.Wrap(err, "error reading base config")
		}
	}

	// Merge with environment-specific configuration (only if provided)
	if envConfigReader != nil {
		if err := v.MergeConfig(envConfigReader); err != nil {
			log.Printf("Error merging environment-specific config: %s", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, eris.Wrap(err, "unable to decode into struct")
	}

	config.Env = env

	return &config, nil
}
