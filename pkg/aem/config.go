package aem

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Config contains configuration for the AEM repository client.
// All content operations are issued against a single AEM author instance
// over its Sling/JCR HTTP surface.
//
// Example configuration (HCL):
//
//	aem {
//	  host        = "https://author.aem.company.com"
//	  username    = "content-service"
//	  password    = env("AEM_PASSWORD")
//	  timeout     = "30s"
//	  assets_root = "/content/dam"
//	}
type Config struct {
	// Host is the base URL of the AEM author instance
	// Example: "https://author.aem.example.com"
	Host string `hcl:"host" json:"host"`

	// Username for HTTP basic authentication
	Username string `hcl:"username" json:"username"`

	// Password for HTTP basic authentication
	// Should be kept in environment variable for security
	Password string `hcl:"password" json:"-"` // Don't marshal password to JSON

	// Timeout for each outbound AEM request
	// Default: 30 seconds
	Timeout time.Duration `hcl:"timeout,optional" json:"timeout,omitempty"`

	// AssetsRoot is the DAM subtree that uploads and template assets live
	// under. Default: "/content/dam"
	AssetsRoot string `hcl:"assets_root,optional" json:"assetsRoot,omitempty"`

	// TLSVerify controls TLS certificate verification
	// Set to false only for development/testing with self-signed certs
	TLSVerify *bool `hcl:"tls_verify,optional" json:"tlsVerify,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		Timeout:    30 * time.Second,
		AssetsRoot: "/content/dam",
		TLSVerify:  &tlsVerify,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}

	parsedURL, err := url.Parse(c.Host)
	if err != nil {
		return fmt.Errorf("invalid host: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("host must use http or https scheme, got: %s", parsedURL.Scheme)
	}

	if c.Username == "" {
		return fmt.Errorf("username is required")
	}

	if c.Password == "" {
		return fmt.Errorf("password is required")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", c.Timeout)
	}

	return nil
}

// NewHTTPClient creates a configured HTTP client for this instance
func (c *Config) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	// Configure TLS verification
	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
	}
}
