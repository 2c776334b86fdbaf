// Package config loads and validates the service configuration from an HCL
// file. The configuration is decoded once at process start and passed by
// reference to every component that needs it; nothing reads the environment
// implicitly at runtime.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/buildeasy/webverse/pkg/aem"
)

// Config is the top-level service configuration.
//
// Example (HCL):
//
//	listen_addr = "127.0.0.1:8000"
//	base_url    = "http://localhost:8000"
//	api_prefix  = "/api/v1"
//	environment = "development"
//	log_level   = "info"
//	debug       = true
//
//	aem {
//	  host        = "https://author.aem.company.com"
//	  username    = "content-service"
//	  password    = "..."
//	  timeout     = "30s"
//	  assets_root = "/content/dam"
//	}
type Config struct {
	// ListenAddr is the host:port the HTTP server binds to.
	ListenAddr string `hcl:"listen_addr,optional"`

	// BaseURL is the externally visible base URL of this service.
	BaseURL string `hcl:"base_url,optional"`

	// APIPrefix is prepended to every API route. Default "/api/v1".
	APIPrefix string `hcl:"api_prefix,optional"`

	// Environment names the deployment environment (development, staging,
	// production). Reported by the health and root endpoints.
	Environment string `hcl:"environment,optional"`

	// LogLevel is the hclog level name (trace, debug, info, warn, error).
	LogLevel string `hcl:"log_level,optional"`

	// LogFormat selects "standard" or "json" log output.
	LogFormat string `hcl:"log_format,optional"`

	// Debug disables the allowed-host restriction. Off in production.
	Debug bool `hcl:"debug,optional"`

	// AllowedHosts restricts the Host headers accepted when Debug is off.
	AllowedHosts []string `hcl:"allowed_hosts,optional"`

	// AEMTimeout is the per-request timeout for outbound AEM calls,
	// as a duration string. Overrides the aem block's default when set.
	AEMTimeout string `hcl:"aem_timeout,optional"`

	// AEM configures the repository client.
	AEM *aemBlock `hcl:"aem,block"`
}

// aemBlock mirrors aem.Config with an HCL-friendly timeout string.
type aemBlock struct {
	Host       string `hcl:"host"`
	Username   string `hcl:"username"`
	Password   string `hcl:"password"`
	Timeout    string `hcl:"timeout,optional"`
	AssetsRoot string `hcl:"assets_root,optional"`
	TLSVerify  *bool  `hcl:"tls_verify,optional"`
}

// NewConfig parses the HCL file at path, applies defaults, and validates the
// result.
func NewConfig(path string) (*Config, error) {
	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("error decoding config file %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:8000"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://" + cfg.ListenAddr
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "standard"
	}
	if len(cfg.AllowedHosts) == 0 {
		cfg.AllowedHosts = []string{"localhost", "127.0.0.1"}
	}
}

// Validate checks the configuration, including the embedded AEM block.
func (c *Config) Validate() error {
	if c.AEM == nil {
		return fmt.Errorf("aem block is required")
	}

	if !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("api_prefix must start with '/', got: %s", c.APIPrefix)
	}

	if c.LogFormat != "standard" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be 'standard' or 'json', got: %s", c.LogFormat)
	}

	if _, err := c.AEMConfig(); err != nil {
		return err
	}

	return nil
}

// AEMConfig builds the repository client configuration from the aem block.
func (c *Config) AEMConfig() (*aem.Config, error) {
	cfg := aem.DefaultConfig()
	cfg.Host = strings.TrimRight(c.AEM.Host, "/")
	cfg.Username = c.AEM.Username
	cfg.Password = c.AEM.Password
	cfg.AssetsRoot = strings.TrimRight(c.AEM.AssetsRoot, "/")
	if cfg.AssetsRoot == "" {
		cfg.AssetsRoot = aem.DefaultConfig().AssetsRoot
	}
	if c.AEM.TLSVerify != nil {
		cfg.TLSVerify = c.AEM.TLSVerify
	}

	timeout := c.AEM.Timeout
	if c.AEMTimeout != "" {
		timeout = c.AEMTimeout
	}
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid aem timeout %q: %w", timeout, err)
		}
		cfg.Timeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid aem config: %w", err)
	}

	return cfg, nil
}
