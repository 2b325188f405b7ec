package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	TokenBackendFile  = "file"
	TokenBackendRedis = "redis"
)

type Config struct {
	APIURL  string
	Timeout time.Duration
	Profile string
	// Token persistence
	TokenBackend string
	TokenFile    string
	TokenKey     string
	RedisURL     string
	// Offline mirror, empty disables it
	DatabaseURL   string
	MigrationsDir string
	ReposDir      string
	// Search index, empty disables it
	MeiliURL       string
	MeiliMasterKey string
	// Export archive, empty endpoint disables it
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool
	LogLevel    string
	// File is the config file that was read, if any.
	File string
}

func setDefaults(v *viper.Viper) {
	dataDir := defaultDataDir()
	v.SetDefault("api_url", "http://localhost:5000")
	v.SetDefault("timeout_seconds", 30)
	v.SetDefault("profile", "default")
	v.SetDefault("token_backend", TokenBackendFile)
	v.SetDefault("token_file", filepath.Join(dataDir, "token"))
	v.SetDefault("token_key", "")
	v.SetDefault("redis_url", "redis://localhost:6379/0")
	v.SetDefault("database_url", "")
	v.SetDefault("migrations_dir", "./db/migrations")
	v.SetDefault("repos_dir", filepath.Join(dataDir, "repos"))
	v.SetDefault("meili_url", "")
	v.SetDefault("meili_master_key", "")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")
	v.SetDefault("s3_bucket", "gosshub-exports")
	v.SetDefault("s3_use_ssl", false)
	v.SetDefault("log_level", "info")
}

// Load merges defaults, the config file, GOSSHUB_* environment variables and
// any flags that were set, in increasing priority. An empty path looks for
// config.yaml in the user config directory and tolerates its absence.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("GOSSHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return Config{}, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultDataDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		APIURL:         strings.TrimRight(v.GetString("api_url"), "/"),
		Timeout:        time.Duration(v.GetInt("timeout_seconds")) * time.Second,
		Profile:        v.GetString("profile"),
		TokenBackend:   strings.ToLower(v.GetString("token_backend")),
		TokenFile:      v.GetString("token_file"),
		TokenKey:       v.GetString("token_key"),
		RedisURL:       v.GetString("redis_url"),
		DatabaseURL:    v.GetString("database_url"),
		MigrationsDir:  v.GetString("migrations_dir"),
		ReposDir:       v.GetString("repos_dir"),
		MeiliURL:       v.GetString("meili_url"),
		MeiliMasterKey: v.GetString("meili_master_key"),
		S3Endpoint:     v.GetString("s3_endpoint"),
		S3AccessKey:    v.GetString("s3_access_key"),
		S3SecretKey:    v.GetString("s3_secret_key"),
		S3Bucket:       v.GetString("s3_bucket"),
		S3UseSSL:       v.GetBool("s3_use_ssl"),
		LogLevel:       v.GetString("log_level"),
		File:           v.ConfigFileUsed(),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("config: api_url is required")
	}
	if c.Timeout <= 0 {
		return errors.New("config: timeout_seconds must be positive")
	}
	switch c.TokenBackend {
	case TokenBackendFile:
		if c.TokenFile == "" {
			return errors.New("config: token_file is required for the file token backend")
		}
	case TokenBackendRedis:
		if c.RedisURL == "" {
			return errors.New("config: redis_url is required for the redis token backend")
		}
	default:
		return fmt.Errorf("config: unknown token_backend %q", c.TokenBackend)
	}
	return nil
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".gosshub"
	}
	return filepath.Join(dir, "gosshub")
}
