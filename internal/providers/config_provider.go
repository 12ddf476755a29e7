package providers

import (
	"bibled/internal/structures"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const AppName = "ScriptureCacheDaemon"

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	// .env is optional; real environment variables always win.
	_ = godotenv.Load()

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	setDefaults(v)

	v.BindEnv("logger.level", "BIBLED_LOG_LEVEL")
	v.BindEnv("provider.baseUrl", "BIBLED_PROVIDER_URL")
	v.BindEnv("provider.apiKey", "BIBLED_PROVIDER_API_KEY")
	v.BindEnv("provider.cacheMaxAge", "BIBLED_CACHE_MAX_AGE")
	v.BindEnv("cache.enabled", "BIBLED_CACHE_ENABLED")
	v.BindEnv("cache.size", "BIBLED_CACHE_SIZE")
	v.BindEnv("search.timeout", "BIBLED_SEARCH_TIMEOUT")
	v.BindEnv("database.path", "BIBLED_DB_PATH")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 8080)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("provider.timeout", 10*time.Second)
	v.SetDefault("provider.cacheMaxAge", 7*24*time.Hour)
	v.SetDefault("provider.defaultTranslation", "KJV")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 64)
	v.SetDefault("cache.saveInterval", 5*time.Minute)
	v.SetDefault("search.maxResults", 50)
	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("streak.timezone", "UTC")
}
