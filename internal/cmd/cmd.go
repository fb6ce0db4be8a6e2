package cmd

import (
	"context"
	"log"
	"strings"
	"time"

	"chatrelay/internal/backend"
	"chatrelay/internal/backend/ollama"
	"chatrelay/internal/backend/openai"
	"chatrelay/internal/server"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultPort    = "8000"
	defaultModel   = "model_a"
	defaultTimeout = "30s"
)

// ModelConfig describes one named backend in the registry.
type ModelConfig struct {
	Type     string `mapstructure:"type"`
	Endpoint string `mapstructure:"endpoint"`
	Apikey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
}

type config struct {
	Models       map[string]ModelConfig `mapstructure:"models"`
	DefaultModel string                 `mapstructure:"default_model"`
	Port         string                 `mapstructure:"port"`
	Loglevel     string                 `mapstructure:"log_level"`
	Timeout      string                 `mapstructure:"timeout"`
}

func Run() {
	var configPath *string = pflag.StringP("config", "c", "", "sets the config file location e.g. $HOME/relay-config.yaml")

	pflag.Parse()
	ctx := context.Background()
	exitCh := make(chan string, 1)

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	// Have to use custom key delimiter to allow for models with periods in the name
	v := viper.NewWithOptions(
		viper.KeyDelimiter("#"),
		viper.EnvKeyReplacer(strings.NewReplacer("#", "_")),
	)

	if configPath != nil && *configPath != "" {
		v.SetConfigFile(*configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetDefault("port", defaultPort)
	v.SetDefault("default_model", defaultModel)
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("log_level", "info")

	v.BindPFlags(pflag.CommandLine)
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		err = errors.Wrap(err, "error reading config file")
		log.Fatal(err)
	}

	var cfg config
	if err = v.Unmarshal(&cfg); err != nil {
		err = errors.Wrap(err, "error unmarshaling config")
		log.Fatal(err)
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		err = errors.Wrap(err, "error building model registry")
		log.Fatal(err)
	}

	svr, err := server.New(ctx, server.Options{
		Port:     cfg.Port,
		Registry: registry,
		LogLevel: cfg.Loglevel,
		Timeout:  cfg.Timeout,
		ExitCh:   exitCh,
	})
	if err != nil {
		log.Fatalf("unable to start server %s", err.Error())
	}

	go func() {
		if err := svr.Start(); err != nil {
			exitCh <- err.Error()
		}
	}()

	select {
	case s := <-exitCh:
		log.Fatalf("killed with message %s", s)
	case <-ctx.Done():
		log.Fatal("context cancelled")
	}

}

// buildRegistry turns the configured model map into the immutable registry
// the server is constructed with. The registry never changes after this.
func buildRegistry(cfg config) (*backend.Registry, error) {
	if len(cfg.Models) == 0 {
		return nil, errors.New("no models configured")
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		timeout = 30 * time.Second
	}

	backends := make(map[string]backend.Backend, len(cfg.Models))
	for name, mc := range cfg.Models {
		be, err := newBackend(name, mc, timeout)
		if err != nil {
			return nil, errors.Wrapf(err, "model %q", name)
		}
		backends[name] = be
	}

	return backend.NewRegistry(backends, cfg.DefaultModel)
}

func newBackend(name string, mc ModelConfig, timeout time.Duration) (backend.Backend, error) {
	if mc.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	switch mc.Type {
	case "openai", "":
		return openai.New(openai.Options{
			Name:     name,
			Endpoint: mc.Endpoint,
			Model:    mc.Model,
			ApiKey:   mc.Apikey,
			Timeout:  timeout,
		}), nil
	case "ollama":
		return ollama.New(ollama.Options{
			Name:     name,
			Endpoint: mc.Endpoint,
			Model:    mc.Model,
			Timeout:  timeout,
		}), nil
	default:
		return nil, errors.Errorf("unknown backend type %q", mc.Type)
	}
}
