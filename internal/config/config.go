package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address  string `mapstructure:"address"`
	Port     int    `mapstructure:"port"`
	Mode     string `mapstructure:"mode"`
	BasePath string `mapstructure:"base_path"`
}

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"` // sqlite / postgres
	Path        string `mapstructure:"path"`   // sqlite file
	DSN         string `mapstructure:"dsn"`    // postgres connection string
	LogMode     bool   `mapstructure:"log_mode"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type JWTConfig struct {
	Secret         string `mapstructure:"secret"`
	Issuer         string `mapstructure:"issuer"`
	ExpireHours    int    `mapstructure:"expire_hours"`
	RequireSession bool   `mapstructure:"require_session"`
}

type SecurityConfig struct {
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
	EncryptionKey string `mapstructure:"encryption_key"`
}

type LogConfig struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text / json
}

type BackupConfig struct {
	Dir string `mapstructure:"dir"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
	Backup   BackupConfig   `mapstructure:"backup"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

// EnvPrefix is prepended to every environment override, e.g. FL_SERVER_PORT=9000.
const EnvPrefix = "FL"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.base_path", "/api")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/finance.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.log_mode", false)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "finance-ledger")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("jwt.require_session", true)

	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.encryption_key", "")

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("backup.dir", "data/backups")
	v.SetDefault("cors.allow_origins", []string{})
}

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, "config.yaml" in the working directory is used when present;
// a missing default file is not an error. A .env file is loaded first so its
// values can feed the FL_* overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. FL_JWT_SECRET=...
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Server.BasePath = normalizeBasePath(c.Server.BasePath)
	return &c, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid server.port %d: must be between 1 and 65535", c.Server.Port))
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			problems = append(problems, "database.path cannot be empty when using the sqlite driver")
		}
	case "postgres":
		if c.Database.DSN == "" {
			problems = append(problems, "database.dsn cannot be empty when using the postgres driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid database.driver %q: must be one of [sqlite postgres]", c.Database.Driver))
	}

	if len(c.JWT.Secret) < 16 {
		problems = append(problems, "jwt.secret must be at least 16 characters")
	}
	if c.JWT.ExpireHours <= 0 {
		problems = append(problems, "jwt.expire_hours must be positive")
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		problems = append(problems, fmt.Sprintf("invalid security.bcrypt_cost %d: must be between 4 and 31", c.Security.BcryptCost))
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log.format %q: must be text or json", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}
