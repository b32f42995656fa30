package grammar

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	parsing "github.com/klahnakoski/mo-parsing-sub000"
)

// Configuration errors, reported as *parsing.Error.
const (
	InvalidConfigError = iota + parsing.ConfigErrors
)

// Config contains grammar defaults, may be loaded from YAML.
type Config struct {
	// Packrat enables memoization of intermediate matches.
	Packrat bool `yaml:"packrat"`
	// CacheSize limits the number of memoized entries, 0 means no limit.
	CacheSize int `yaml:"cache_size"`
	// Whitespace contains characters skipped before tokens.
	Whitespace string `yaml:"whitespace"`
	// KeywordChars contains characters that cannot surround a keyword.
	KeywordChars string `yaml:"keyword_chars"`
	// Debug enables tracing of all expressions.
	Debug bool `yaml:"debug"`
	// LogLevel is a logrus level name.
	LogLevel string `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Whitespace:   DefaultWhitespace,
		KeywordChars: DefaultKeywordChars,
		LogLevel:     "warning",
	}
}

// LoadConfig reads YAML configuration, missing fields keep default values.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	e := decoder.Decode(&cfg)
	if e != nil && !errors.Is(e, io.EOF) {
		return cfg, configError("cannot read config (%s)", e.Error())
	}

	if _, e = parseLogLevel(cfg.LogLevel); e != nil {
		return cfg, e
	}
	if cfg.CacheSize < 0 {
		return cfg, configError("cache size must not be negative, got %d", cfg.CacheSize)
	}
	return cfg, nil
}

func parseLogLevel(name string) (logrus.Level, error) {
	if name == "" {
		return logrus.WarnLevel, nil
	}
	level, e := logrus.ParseLevel(name)
	if e != nil {
		return 0, configError("unknown log level %q", name)
	}
	return level, nil
}

func configError(msg string, params ...any) *parsing.Error {
	return parsing.FormatError(InvalidConfigError, msg, params...)
}
