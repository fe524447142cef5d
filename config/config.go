/*
Package config holds server configuration.

PURPOSE:
  One YAML file, layered over built-in defaults, then environment
  overrides. Command-line flags in cmd/server override the result.

EXAMPLE (audit.yaml):

	server:
	  port: 8080
	  cors_origins: ["http://localhost:5173"]
	database:
	  path: ./audit.db
	logging:
	  format: json
	  level: info
	salary:
	  table_path: ./salary.yaml
	audit:
	  default_cadre: general
	  reaudit_interval: 24h

ENVIRONMENT:
  AUDIT_PORT, AUDIT_DB_PATH, AUDIT_LOG_LEVEL, AUDIT_LOG_FORMAT,
  AUDIT_SALARY_TABLE, AUDIT_REAUDIT_INTERVAL

SEE ALSO:
  - logging.go: slog initialization
  - cmd/server/main.go: Consumer
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/warp/personnel-audit/generic"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        int      `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"` // ":memory:" for an in-memory database
	} `yaml:"database"`

	Logging struct {
		Format string `yaml:"format"` // "json"|"text"
		Level  string `yaml:"level"`  // "debug"|"info"|"warn"|"error"
	} `yaml:"logging"`

	Salary struct {
		TablePath string `yaml:"table_path"` // empty = built-in CONPSS table
	} `yaml:"salary"`

	Audit struct {
		DefaultCadre    string   `yaml:"default_cadre"`
		ReauditInterval Duration `yaml:"reaudit_interval"` // 0 disables the scheduler
		SeedScenarios   bool     `yaml:"seed_scenarios"`
	} `yaml:"audit"`
}

// Duration reads "24h"-style strings from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(node.Value))
	if err != nil {
		return fmt.Errorf("duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

func Default() Config {
	var c Config
	c.Server.Port = 8080
	c.Server.CORSOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	c.Database.Path = "audit.db"
	c.Logging.Format = "json"
	c.Logging.Level = "info"
	c.Audit.DefaultCadre = "general"
	c.Audit.ReauditInterval = Duration(24 * time.Hour)
	return c
}

// Load reads path over Default and applies environment overrides. An empty
// path skips the file.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("%w: %s: %v", generic.ErrInvalidConfig, path, err)
		}
	}
	if err := c.applyEnv(); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("AUDIT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: AUDIT_PORT %q", generic.ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("AUDIT_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("AUDIT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("AUDIT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("AUDIT_SALARY_TABLE"); v != "" {
		c.Salary.TablePath = v
	}
	if v := os.Getenv("AUDIT_REAUDIT_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: AUDIT_REAUDIT_INTERVAL %q", generic.ErrInvalidConfig, v)
		}
		c.Audit.ReauditInterval = Duration(d)
	}
	return nil
}

func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &generic.ValidationError{Field: "server.port", Message: fmt.Sprintf("%d out of range", c.Server.Port), Err: generic.ErrInvalidConfig}
	}
	if c.Database.Path == "" {
		return &generic.ValidationError{Field: "database.path", Message: "required", Err: generic.ErrInvalidConfig}
	}
	if c.Audit.ReauditInterval < 0 {
		return &generic.ValidationError{Field: "audit.reaudit_interval", Message: "must not be negative", Err: generic.ErrInvalidConfig}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return &generic.ValidationError{Field: "logging.format", Message: "must be json or text", Err: generic.ErrInvalidConfig}
	}
	return nil
}
