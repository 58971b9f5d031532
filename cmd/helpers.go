package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ziadkadry99/boulevard/internal/config"
	"github.com/ziadkadry99/boulevard/internal/delivery"
	"github.com/ziadkadry99/boulevard/internal/delivery/filesource"
	"github.com/ziadkadry99/boulevard/internal/logging"
	"github.com/ziadkadry99/boulevard/internal/pages"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `boulevard init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

func newLogger() (*zap.Logger, error) {
	logger, err := logging.New(verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger, nil
}

// createQuerierFromConfig returns the content source named by the config.
// The file source is also returned when content_dir is set so callers can
// watch it.
func createQuerierFromConfig(cfg *config.Config, logger *zap.Logger) (delivery.Querier, *filesource.Source, error) {
	if cfg.UsesContentDir() {
		src, err := filesource.New(cfg.ContentDir, logger.Named("filesource"))
		if err != nil {
			return nil, nil, fmt.Errorf("loading content from %s: %w", cfg.ContentDir, err)
		}
		return src, src, nil
	}

	client, err := delivery.NewClient(delivery.Options{
		EnvironmentID: cfg.EnvironmentID,
		APIKey:        cfg.APIKey,
		PreviewAPIKey: cfg.PreviewAPIKey,
		BaseURL:       cfg.DeliveryURL,
		PreviewURL:    cfg.PreviewURL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating delivery client: %w", err)
	}
	return client, nil, nil
}

func defaultsFromConfig(cfg *config.Config) pages.Defaults {
	return pages.Defaults{
		Collection: cfg.DefaultCollection,
		Language:   cfg.DefaultLanguage,
	}
}
