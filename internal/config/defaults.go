package config

import (
	"time"

	"github.com/ziadkadry99/boulevard/internal/carousel"
	"github.com/ziadkadry99/boulevard/internal/delivery"
	"github.com/ziadkadry99/boulevard/internal/pages"
)

// DefaultPath is where init writes the configuration.
const DefaultPath = ".boulevard.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DeliveryURL:       delivery.DefaultBaseURL,
		PreviewURL:        delivery.DefaultPreviewURL,
		DefaultLanguage:   delivery.DefaultLanguage,
		DefaultCollection: pages.DefaultCollection,
		DataDir:           ".boulevard",
		Port:              8080,
		RequestTimeout:    30 * time.Second,
		CarouselInterval:  carousel.DefaultInterval,
		Watch:             true,
		JournalRetention:  7 * 24 * time.Hour,
	}
}
