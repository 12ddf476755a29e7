package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

// ProviderConfig describes the upstream scripture content API.
type ProviderConfig struct {
	BaseURL            string        `yaml:"baseUrl" mapstructure:"baseUrl" validate:"required|fullUrl"`
	APIKey             string        `yaml:"apiKey" mapstructure:"apiKey"`
	Timeout            time.Duration `yaml:"timeout" validate:"required|min:1"`
	CacheMaxAge        time.Duration `yaml:"cacheMaxAge" mapstructure:"cacheMaxAge" validate:"required|min:1"`
	DefaultTranslation string        `yaml:"defaultTranslation" mapstructure:"defaultTranslation" validate:"required"`
}

type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Size         int           `yaml:"size"`
	FilePath     string        `yaml:"filePath" mapstructure:"filePath"`
	SaveInterval time.Duration `yaml:"saveInterval" mapstructure:"saveInterval"`
}

type SearchConfig struct {
	MaxResults int           `yaml:"maxResults" mapstructure:"maxResults"`
	Timeout    time.Duration `yaml:"timeout"`
}

type StreakConfig struct {
	Timezone string `yaml:"timezone"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
	WAL  bool   `yaml:"wal"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server         `yaml:"webServer" mapstructure:"webServer"`
	Logger    LoggerConfig   `yaml:"logger"`
	Provider  ProviderConfig `yaml:"provider"`
	Cache     CacheConfig    `yaml:"cache"`
	Search    SearchConfig   `yaml:"search"`
	Streak    StreakConfig   `yaml:"streak"`
	Database  DatabaseConfig `yaml:"database"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}
