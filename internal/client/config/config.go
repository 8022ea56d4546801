// Package config loads runtime settings for the storefront CLI.
package config

// Config holds runtime settings.
//
// Fields:
//   - APIBaseURL: base URL of the commerce API, including any path prefix.
//   - DatabaseFile: path of the local sqlite file holding session data.
type Config struct {
	APIBaseURL   string
	DatabaseFile string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:3000/api"
	c.DatabaseFile = "storefront.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
