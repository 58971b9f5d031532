package config

import "time"

// Config is the top-level boulevard configuration, corresponding to .boulevard.yml.
type Config struct {
	EnvironmentID     string `yaml:"environment_id" koanf:"environment_id"`
	APIKey            string `yaml:"api_key,omitempty" koanf:"api_key"`
	PreviewAPIKey     string `yaml:"preview_api_key,omitempty" koanf:"preview_api_key"`
	WebhookSecret     string `yaml:"webhook_secret,omitempty" koanf:"webhook_secret"`
	DeliveryURL       string `yaml:"delivery_url" koanf:"delivery_url"`
	PreviewURL        string `yaml:"preview_url" koanf:"preview_url"`
	DefaultLanguage   string `yaml:"default_language" koanf:"default_language"`
	DefaultCollection string `yaml:"default_collection" koanf:"default_collection"`

	// ContentDir serves items from local files instead of the CMS.
	ContentDir string `yaml:"content_dir,omitempty" koanf:"content_dir"`
	DataDir    string `yaml:"data_dir" koanf:"data_dir"`

	Port             int           `yaml:"port" koanf:"port"`
	AllowAllOrigins  bool          `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	RequestTimeout   time.Duration `yaml:"request_timeout" koanf:"request_timeout"`
	CarouselInterval time.Duration `yaml:"carousel_interval" koanf:"carousel_interval"`
	Watch            bool          `yaml:"watch" koanf:"watch"`

	// JournalRetention prunes preview events older than this at startup.
	// Zero keeps everything.
	JournalRetention time.Duration `yaml:"journal_retention" koanf:"journal_retention"`
}

// UsesContentDir reports whether items come from local files.
func (c *Config) UsesContentDir() bool { return c.ContentDir != "" }
