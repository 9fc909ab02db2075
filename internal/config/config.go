package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so config files can use duration strings
// like "3s" as well as plain integer nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var ns int64
	if err := value.Decode(&ns); err == nil {
		*d = Duration(ns)
		return nil
	}

	var text string
	if err := value.Decode(&text); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// AppConfig holds the complete application configuration
type AppConfig struct {
	IO        IOConfig        `yaml:"io"`
	Browser   BrowserConfig   `yaml:"browser"`
	Extract   ExtractConfig   `yaml:"extract"`
	Thumbnail ThumbnailConfig `yaml:"thumbnail"`
	Report    ReportConfig    `yaml:"report"`
	Proxies   ProxyConfig     `yaml:"proxies"`
}

// IOConfig holds the input/output configuration
type IOConfig struct {
	InputFile  string `yaml:"input_file"`
	OutputFile string `yaml:"output_file"`
}

// BrowserConfig holds the headless browser configuration
type BrowserConfig struct {
	Headless    bool     `yaml:"headless"`
	UserAgent   string   `yaml:"user_agent"`
	SettleDelay Duration `yaml:"settle_delay"`
}

// ExtractConfig holds the metadata extraction configuration
type ExtractConfig struct {
	MarketplaceDomains []string `yaml:"marketplace_domains"`
	SettleDelay        Duration `yaml:"settle_delay"`
	ElementTimeout     Duration `yaml:"element_timeout"`
	MaxRetries         int      `yaml:"max_retries"`
	RetryDelay         Duration `yaml:"retry_delay"`
}

// ThumbnailConfig holds the thumbnail download and normalization configuration
type ThumbnailConfig struct {
	UserAgent   string   `yaml:"user_agent"`
	Timeout     Duration `yaml:"timeout"`
	TargetWidth int      `yaml:"target_width"`
	JPEGQuality int      `yaml:"jpeg_quality"`
}

// ReportConfig holds the PDF report configuration
type ReportConfig struct {
	FooterText string `yaml:"footer_text"`
}

// ProxyConfig holds the proxy configuration for thumbnail downloads
type ProxyConfig struct {
	Enabled bool     `yaml:"enabled"`
	Rotate  bool     `yaml:"rotate"`
	List    []string `yaml:"list"`
	Auth    struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"auth"`
}

// Load loads the configuration from a YAML file
func Load(filename string) (*AppConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := CreateDefault("", "")
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	// Restore defaults for fields the file left empty
	if config.IO.InputFile == "" {
		config.IO.InputFile = DefaultInputFile
	}
	if config.IO.OutputFile == "" {
		config.IO.OutputFile = DefaultOutputFile
	}
	if len(config.Extract.MarketplaceDomains) == 0 {
		config.Extract.MarketplaceDomains = DefaultMarketplaceDomains
	}

	return config, nil
}

// CreateDefault creates a default configuration. Empty inputFile or
// outputFile select the conventional fixed filenames.
func CreateDefault(inputFile, outputFile string) *AppConfig {
	if inputFile == "" {
		inputFile = DefaultInputFile
	}
	if outputFile == "" {
		outputFile = DefaultOutputFile
	}

	return &AppConfig{
		IO: IOConfig{
			InputFile:  inputFile,
			OutputFile: outputFile,
		},
		Browser: BrowserConfig{
			Headless:    true,
			UserAgent:   DefaultUserAgents[0],
			SettleDelay: Duration(2 * time.Second),
		},
		Extract: ExtractConfig{
			MarketplaceDomains: DefaultMarketplaceDomains,
			SettleDelay:        Duration(2 * time.Second),
			ElementTimeout:     Duration(10 * time.Second),
			MaxRetries:         3,
			RetryDelay:         Duration(time.Second),
		},
		Thumbnail: ThumbnailConfig{
			UserAgent:   DefaultUserAgents[0],
			Timeout:     Duration(30 * time.Second),
			TargetWidth: 800,
			JPEGQuality: 75,
		},
		Report: ReportConfig{
			FooterText: DefaultFooterText,
		},
		Proxies: ProxyConfig{
			Enabled: false,
			Rotate:  true,
			List:    []string{},
		},
	}
}
