package vcmp

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is the file-level configuration read by the vcmp command.
//
//	components: vc_components/
//	extension: .html
//	tag: vc
//	token_sigil: $
//	max_fetches: 8
//	loader_script: vanilla_components.js
//	log:
//	  level: info
//	  format: console
//	bundle:
//	  path: components.vcb
//	  key: change-me
type Config struct {
	// Components is a directory or an http(s) base URL holding templates.
	Components   string       `yaml:"components"`
	Extension    string       `yaml:"extension"`
	Tag          string       `yaml:"tag"`
	TokenSigil   string       `yaml:"token_sigil"`
	MaxFetches   int          `yaml:"max_fetches"`
	LoaderScript string       `yaml:"loader_script"`
	Log          LogConfig    `yaml:"log"`
	Bundle       BundleConfig `yaml:"bundle"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// BundleConfig points at a pre-built template bundle. When Path is set the
// bundle replaces Components as the template source.
type BundleConfig struct {
	Path   string `yaml:"path"`
	Key    string `yaml:"key"`
	Sealed bool   `yaml:"sealed"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Components:   "vc_components/",
		Extension:    DefaultExtension,
		Tag:          DefaultTag,
		TokenSigil:   "$",
		MaxFetches:   DefaultMaxFetches,
		LoaderScript: DefaultLoaderScript,
		Log:          LogConfig{Level: "info", Format: "console"},
	}
}

// LoadConfig decodes YAML from r over DefaultConfig. Unknown keys are
// rejected.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("vcmp: decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return LoadConfig(f)
}

// Validate checks the configuration for values New cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.Components == "" && c.Bundle.Path == "" {
		errs = append(errs, errors.New("components or bundle.path is required"))
	}
	if c.Extension == "" {
		errs = append(errs, errors.New("extension must not be empty"))
	}
	if c.Tag == "" || strings.ContainsAny(c.Tag, " \t\n<>/") {
		errs = append(errs, fmt.Errorf("invalid tag %q", c.Tag))
	}
	if c.TokenSigil == "" {
		errs = append(errs, errors.New("token_sigil must not be empty"))
	}
	if c.MaxFetches <= 0 {
		errs = append(errs, fmt.Errorf("max_fetches must be positive, got %d", c.MaxFetches))
	}
	if c.Bundle.Path != "" && c.Bundle.Key == "" {
		errs = append(errs, errors.New("bundle.key is required with bundle.path"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("vcmp: invalid config: %w", err)
	}
	return nil
}

// Fetcher builds the template source the configuration describes.
func (c Config) Fetcher() (Fetcher, error) {
	if c.Bundle.Path != "" {
		f, err := os.Open(c.Bundle.Path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		b, err := ReadBundle(f, []byte(c.Bundle.Key))
		if err != nil {
			return nil, err
		}
		return NewBundleFetcher(b), nil
	}
	if strings.HasPrefix(c.Components, "http://") || strings.HasPrefix(c.Components, "https://") {
		return NewHTTPFetcher(http.DefaultClient, c.Components, c.Extension)
	}
	return NewFSFetcher(os.DirFS(strings.TrimSuffix(c.Components, "/")), c.Extension), nil
}

// Options converts the configuration into Expander options.
func (c Config) Options(log *zap.Logger) []Option {
	return []Option{
		WithLogger(log),
		WithTag(c.Tag),
		WithSigil(c.TokenSigil),
		WithLoaderScript(c.LoaderScript),
		WithMaxFetches(c.MaxFetches),
	}
}
