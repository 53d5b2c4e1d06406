// Package config loads run settings from an optional YAML file, a .env file
// and STATEMENTS_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/statement-tables/internal/analysis"
	"github.com/insightdelivered/statement-tables/internal/logger"
)

// DefaultFile is read when no config path is given; it may be absent.
const DefaultFile = "statements.yaml"

// Config holds every tunable of a run.
type Config struct {
	InputDir    string `yaml:"input_dir"`
	OutputDir   string `yaml:"output_dir"`
	Extension   string `yaml:"extension"`
	Concurrency int    `yaml:"concurrency"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	WriteXLSX   bool     `yaml:"write_xlsx"`
	WriteCSV    bool     `yaml:"write_csv"`
	DateLayouts []string `yaml:"date_layouts"`

	// ReportFile is resolved against OutputDir unless absolute or
	// containing a directory part.
	ReportFile   string              `yaml:"report_file"`
	TopMerchants int                 `yaml:"top_merchants"`
	Categories   []analysis.Category `yaml:"categories"`

	ListenAddr    string `yaml:"listen_addr"`
	PdftotextPath string `yaml:"pdftotext_path"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		InputDir:      "statement_folder",
		OutputDir:     "processed_output",
		Extension:     ".pdf",
		Concurrency:   1,
		LogLevel:      "info",
		LogFormat:     "console",
		WriteXLSX:     true,
		WriteCSV:      true,
		ReportFile:    "analysis_report.xlsx",
		TopMerchants:  10,
		ListenAddr:    ":8080",
		PdftotextPath: "pdftotext",
	}
}

// Load reads path over the defaults. An empty path means DefaultFile, which
// is skipped silently when it does not exist; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from STATEMENTS_* variables. lookup is
// usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("STATEMENTS_INPUT_DIR"); ok && v != "" {
		c.InputDir = v
	}
	if v, ok := lookup("STATEMENTS_OUTPUT_DIR"); ok && v != "" {
		c.OutputDir = v
	}
	if v, ok := lookup("STATEMENTS_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup("STATEMENTS_LISTEN_ADDR"); ok && v != "" {
		c.ListenAddr = v
	}
	if v, ok := lookup("STATEMENTS_CONCURRENCY"); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("STATEMENTS_CONCURRENCY: %w", err)
		}
		c.Concurrency = n
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if strings.TrimSpace(c.Extension) == "" {
		return errors.New("extension must not be empty")
	}
	if !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.TopMerchants < 0 {
		return fmt.Errorf("top_merchants must not be negative, got %d", c.TopMerchants)
	}
	for i, cat := range c.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("category %d has no name", i+1)
		}
	}
	return nil
}

// ReportPath is where the analysis workbook is written.
func (c *Config) ReportPath() string {
	if c.ReportFile == "" {
		return ""
	}
	if filepath.IsAbs(c.ReportFile) || filepath.Base(c.ReportFile) != c.ReportFile {
		return c.ReportFile
	}
	return filepath.Join(c.OutputDir, c.ReportFile)
}
