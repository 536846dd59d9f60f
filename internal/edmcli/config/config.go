//nolint:revive // Config struct field names match YAML structure
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dimasma0305/edmcli/internal/edmcli/edmapi"
	"github.com/dimasma0305/edmcli/internal/edmcli/errors"
	"github.com/dimasma0305/edmcli/internal/edmcli/member"
	"github.com/dimasma0305/edmcli/internal/log"
)

const (
	EDM_DIR     = ".edm"
	CONFIG_FILE = "conf.yaml"

	EnvURL   = "EDM_URL"
	EnvToken = "EDM_TOKEN"

	DefaultTimeout     = 30 * time.Second
	DefaultConcurrency = 4
	DefaultPageSize    = 20
)

// Config is the content of .edm/conf.yaml
type Config struct {
	Url      string        `yaml:"url"`
	Token    string        `yaml:"token,omitempty"`
	Creds    *edmapi.Creds `yaml:"creds,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
	Insecure bool          `yaml:"insecure,omitempty"`
	Import   ImportConfig  `yaml:"import"`
	Grid     GridConfig    `yaml:"grid"`
}

// ImportConfig drives spreadsheet reading and submission
type ImportConfig struct {
	SkipRows      int                 `yaml:"skip_rows"`
	MaxRows       int                 `yaml:"max_rows,omitempty"`
	Concurrency   int                 `yaml:"concurrency"`
	ColumnMapping map[string][]string `yaml:"column_mapping,omitempty"`
	Required      []string            `yaml:"required,omitempty"`
}

// GridConfig drives list views
type GridConfig struct {
	PageSize int `yaml:"page_size"`
}

// Default returns a Config with every optional value filled in
func Default() *Config {
	return &Config{
		Timeout: DefaultTimeout,
		Import:  ImportConfig{Concurrency: DefaultConcurrency},
		Grid:    GridConfig{PageSize: DefaultPageSize},
	}
}

// Path returns the config file location under dir
func Path(dir string) string {
	return filepath.Join(dir, EDM_DIR, CONFIG_FILE)
}

// Load reads the config under dir, applies environment overrides and fills defaults
func Load(dir string) (*Config, error) {
	confPath := Path(dir)
	conf := Default()
	if err := parseYamlFromFile(confPath, conf); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrConfigNotFound, "%s (run 'edmcli init' first)", confPath)
		}
		return nil, errors.Wrap(err, "failed to read "+confPath)
	}
	log.Debug("Loaded config from %s", confPath)

	conf.applyEnv()
	conf.applyDefaults()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// LoadFromWorkDir loads the config of the current working directory
func LoadFromWorkDir() (*Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return Load(dir)
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvURL)); v != "" {
		log.Debug("Using %s from environment", EnvURL)
		c.Url = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		log.Debug("Using %s from environment", EnvToken)
		c.Token = v
	}
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Import.Concurrency <= 0 {
		c.Import.Concurrency = DefaultConcurrency
	}
	if c.Grid.PageSize <= 0 {
		c.Grid.PageSize = DefaultPageSize
	}
}

// Validate reports settings the client can not work with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Url) == "" {
		return errors.Wrapf(errors.ErrMissingRequired, "url (set it in %s or %s)", CONFIG_FILE, EnvURL)
	}
	if c.Import.SkipRows < 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "import.skip_rows must not be negative, got %d", c.Import.SkipRows)
	}
	if c.Import.MaxRows < 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "import.max_rows must not be negative, got %d", c.Import.MaxRows)
	}
	if c.Token == "" && (c.Creds == nil || c.Creds.Username == "") {
		log.Warn("No token or credentials configured, requests will be sent unauthenticated")
	}
	_, err := c.ColumnMap()
	return err
}

// ColumnMap builds the header mapping for imports
func (c *Config) ColumnMap() (member.ColumnMap, error) {
	if len(c.Import.ColumnMapping) == 0 && len(c.Import.Required) == 0 {
		return member.DefaultColumnMap(), nil
	}
	aliases := make(map[member.Field][]string, len(c.Import.ColumnMapping))
	for field, headers := range c.Import.ColumnMapping {
		aliases[member.Field(strings.ToLower(strings.TrimSpace(field)))] = headers
	}
	required := make([]member.Field, 0, len(c.Import.Required))
	for _, f := range c.Import.Required {
		required = append(required, member.Field(strings.ToLower(strings.TrimSpace(f))))
	}
	cm, err := member.NewColumnMap(aliases, required)
	if err != nil {
		return nil, fmt.Errorf("import.column_mapping: %w", err)
	}
	return cm, nil
}

// SetColumnMapping stores cm so later imports reuse it
func (c *Config) SetColumnMapping(cm member.ColumnMap) {
	c.Import.ColumnMapping = make(map[string][]string, len(cm))
	c.Import.Required = nil
	for _, col := range cm {
		c.Import.ColumnMapping[string(col.Field)] = col.Headers
		if col.Required {
			c.Import.Required = append(c.Import.Required, string(col.Field))
		}
	}
}

// ClientOptions are the transport settings for edmapi.New
func (c *Config) ClientOptions() edmapi.Options {
	return edmapi.Options{Timeout: c.Timeout, Insecure: c.Insecure}
}

// SaveColumnMapping stores cm in the config file under dir. The file is re-read so that
// environment overrides and filled-in defaults never reach it; only the mapping changes.
func SaveColumnMapping(dir string, cm member.ColumnMap) error {
	confPath := Path(dir)
	raw := &Config{}
	if err := parseYamlFromFile(confPath, raw); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to read "+confPath)
	}
	raw.SetColumnMapping(cm)
	return Save(dir, raw)
}

// Save writes c to the config file under dir, creating .edm when needed
func Save(dir string, c *Config) error {
	confPath := Path(dir)
	if err := os.MkdirAll(filepath.Dir(confPath), 0750); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(confPath), err)
	}
	data, err := marshalYaml(c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(confPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", confPath, err)
	}
	log.Debug("Wrote config to %s", confPath)
	return nil
}
