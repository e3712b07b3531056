// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	OPA      OPAConfig      `mapstructure:"opa"`
	OTEL     OTELConfig     `mapstructure:"otel"`
	Policies PoliciesConfig `mapstructure:"policies"`
	Planner  PrincipalConfig `mapstructure:"planner"`
	Extractor PrincipalConfig `mapstructure:"extractor"`
	Approval ApprovalConfig `mapstructure:"approval"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// AuthConfig holds the bearer-token credential gating the HTTP API.
// Unlike the teacher's multi-provider JWT setup, camelguard's API has a
// single synthetic scope (it fronts one orchestrator.System), so a static
// shared-secret bearer token is all bearerTokenMiddleware needs.
type AuthConfig struct {
	BearerToken string `mapstructure:"bearer_token"`
	Provider    string `mapstructure:"provider"` // loaded but not read by the API middleware
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string   `mapstructure:"port"`
	Host            string   `mapstructure:"host"`
	ReadTimeout     int      `mapstructure:"read_timeout"`
	WriteTimeout    int      `mapstructure:"write_timeout"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int    `mapstructure:"max_conns"`
}

// OPAConfig holds Open Policy Agent configuration for the OPA engine behind
// the API's SDK pre-invoke hook.
type OPAConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	BundlePath    string `mapstructure:"bundle_path"`
	BundleURL     string `mapstructure:"bundle_url"`
	DecisionPath  string `mapstructure:"decision_path"`
	EnableMetrics bool   `mapstructure:"enable_metrics"`
}

// OTELConfig holds OpenTelemetry configuration.
type OTELConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	Endpoint       string  `mapstructure:"endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	ServiceVersion string  `mapstructure:"service_version"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// PoliciesConfig holds the tunables the reference policy set needs —
// loadable from a YAML manifest, grounded in
// ArangoGutierrez-agent-identity-protocol/proxy/pkg/policy/engine.go's
// agent.yaml manifest pattern.
type PoliciesConfig struct {
	ManifestPath        string              `mapstructure:"manifest_path"`
	TrustedDomains       []string            `mapstructure:"trusted_domains"`
	AllowedPathPrefixes  []string            `mapstructure:"allowed_path_prefixes"`
	RateLimits           map[string]int      `mapstructure:"rate_limits"`
	DenyPatterns         map[string][]string `mapstructure:"deny_patterns"`
	ExfiltrationOps      []string            `mapstructure:"exfiltration_ops"`
	SensitiveIndicators  []string            `mapstructure:"sensitive_indicators"`
	MaxExfiltrations     int                 `mapstructure:"max_exfiltrations"`
}

// PrincipalConfig names which model provider and model backs one of the
// dual principals (Planner or Extractor).
type PrincipalConfig struct {
	Provider string `mapstructure:"provider"` // anthropic, openai, bedrock
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
}

// ApprovalConfig selects which approval.Oracle implementation to construct.
type ApprovalConfig struct {
	Kind  string `mapstructure:"kind"` // cli, dialog, always_deny, always_approve
	Title string `mapstructure:"title"`
}

// Load reads configuration from file and environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/camelguard")
		v.AddConfigPath("$HOME/.camelguard")

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("CAMELGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.shutdown_timeout", 30)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "camelguard")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 25)

	v.SetDefault("opa.enabled", false)
	v.SetDefault("opa.bundle_path", "./policies/bundle.tar.gz")
	v.SetDefault("opa.decision_path", "camelguard/allow")
	v.SetDefault("opa.enable_metrics", true)

	v.SetDefault("otel.enabled", true)
	v.SetDefault("otel.service_name", "camelguard")
	v.SetDefault("otel.sampling_rate", 1.0)

	v.SetDefault("policies.trusted_domains", []string{"company.com", "trusted-partner.com"})
	v.SetDefault("policies.allowed_path_prefixes", []string{"/documents/", "/shared/"})
	v.SetDefault("policies.max_exfiltrations", 2)

	v.SetDefault("planner.provider", "anthropic")
	v.SetDefault("extractor.provider", "anthropic")

	v.SetDefault("approval.kind", "cli")

	v.SetDefault("auth.provider", "static")
}

func bindEnvVars(v *viper.Viper) {
	if val := os.Getenv("DATABASE_URL"); val != "" {
		v.Set("database.url", val)
	}
	if val := os.Getenv("POSTGRES_USER"); val != "" {
		v.Set("database.user", val)
	}
	if val := os.Getenv("POSTGRES_PASSWORD"); val != "" {
		v.Set("database.password", val)
	}
	if val := os.Getenv("ANTHROPIC_API_KEY"); val != "" {
		v.Set("planner.api_key", val)
		v.Set("extractor.api_key", val)
	}
	if val := os.Getenv("AUTH_BEARER_TOKEN"); val != "" {
		v.Set("auth.bearer_token", val)
	}
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
