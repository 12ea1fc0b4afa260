package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config carries everything cmd/studyhub needs to wire the program.
type Config struct {
	DataDir     string
	Store       string
	LogFile     string
	LogLevel    string
	NoAltScreen bool

	LLMProvider string
	LLMModel    string
	LLMEndpoint string
}

// Load reads .env (if present), then parses args with environment variables
// as flag defaults.
func Load(args []string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	fs := flag.NewFlagSet("studyhub", flag.ContinueOnError)
	fs.StringVar(&cfg.DataDir, "data", getEnv("STUDYHUB_DATA_DIR", defaultDataDir()), "directory holding the library")
	fs.StringVar(&cfg.Store, "store", getEnv("STUDYHUB_STORE", "file"), "storage backend: file, sqlite or memory")
	fs.StringVar(&cfg.LogFile, "log-file", getEnv("STUDYHUB_LOG_FILE", ""), "log destination (defaults to <data>/studyhub.log)")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("STUDYHUB_LOG_LEVEL", "info"), "log level")
	fs.BoolVar(&cfg.NoAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")
	fs.StringVar(&cfg.LLMProvider, "llm-provider", getEnv("STUDYHUB_LLM_PROVIDER", "ollama"), "assistant backend: ollama, openai or gemini")
	fs.StringVar(&cfg.LLMModel, "llm-model", "", "override the provider's default model")
	fs.StringVar(&cfg.LLMEndpoint, "llm-endpoint", "", "custom endpoint (eg. http://localhost:11434)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	abs, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve data dir: %w", err)
	}
	cfg.DataDir = abs
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "studyhub.log")
	}
	return cfg, nil
}

// Logger opens the log file and returns a logger writing to it. The terminal
// belongs to the TUI, so nothing is logged to stdout.
func (c Config) Logger() (*logrus.Logger, func() error, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	logger.SetLevel(level)

	if err := os.MkdirAll(filepath.Dir(c.LogFile), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, f.Close, nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "studyhub")
	}
	return filepath.Join(".", ".studyhub")
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}
