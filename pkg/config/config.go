package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port string

	FoundryEndpoint string
	FoundryAgentID  string

	AzureEndpoint   string
	AzureDeployment string
	AzureAPIKey     string
	AzureAPIVersion string
	AzureTimeout    time.Duration
	AzureMaxRetries int
	UseMockAPI      bool

	BrandDataDir   string
	DefaultBrandID string
	StaticDir      string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int

	LogLevel  string
	LogFormat string
}

// Load reads environment variables, optionally from a .env file and a config.yaml if present.
// Environment variables always win over the file.
func Load() Config {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	_ = v.ReadInConfig()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3001")
	v.SetDefault("AZURE_OPENAI_API_VERSION", "2024-08-01-preview")
	v.SetDefault("AZURE_OPENAI_TIMEOUT_SECONDS", 120)
	v.SetDefault("AZURE_OPENAI_MAX_RETRIES", 0)
	v.SetDefault("USE_MOCK_API", false)
	v.SetDefault("BRAND_DATA_DIR", "brand-data")
	v.SetDefault("DEFAULT_BRAND_ID", "OAD")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_MINUTES", 60)
	v.SetDefault("JWT_ISSUER", "brand-review")
	v.SetDefault("JWT_TTL_MINUTES", 60)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Port:            v.GetString("PORT"),
		FoundryEndpoint: v.GetString("FOUNDRY_ENDPOINT"),
		FoundryAgentID:  v.GetString("FOUNDRY_AGENT_ID"),
		AzureEndpoint:   strings.TrimRight(v.GetString("AZURE_OPENAI_ENDPOINT"), "/"),
		AzureDeployment: v.GetString("AZURE_OPENAI_DEPLOYMENT"),
		AzureAPIKey:     v.GetString("AZURE_OPENAI_API_KEY"),
		AzureAPIVersion: v.GetString("AZURE_OPENAI_API_VERSION"),
		AzureTimeout:    time.Duration(v.GetInt("AZURE_OPENAI_TIMEOUT_SECONDS")) * time.Second,
		AzureMaxRetries: v.GetInt("AZURE_OPENAI_MAX_RETRIES"),
		UseMockAPI:      v.GetBool("USE_MOCK_API"),
		BrandDataDir:    v.GetString("BRAND_DATA_DIR"),
		DefaultBrandID:  v.GetString("DEFAULT_BRAND_ID"),
		StaticDir:       v.GetString("STATIC_DIR"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		CacheTTL:        time.Duration(v.GetInt("CACHE_TTL_MINUTES")) * time.Minute,
		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTIssuer:       v.GetString("JWT_ISSUER"),
		JWTTTLMinutes:   v.GetInt("JWT_TTL_MINUTES"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
	}
}

// ErrMissing lists configuration keys that must be set before the server can start.
type ErrMissing []string

func (e ErrMissing) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e, ", "))
}

// Validate reports the Azure/Foundry keys that are still empty. Mock mode needs none of them.
func (c Config) Validate() error {
	if c.UseMockAPI {
		return nil
	}
	required := []struct {
		key, val string
	}{
		{"FOUNDRY_ENDPOINT", c.FoundryEndpoint},
		{"FOUNDRY_AGENT_ID", c.FoundryAgentID},
		{"AZURE_OPENAI_ENDPOINT", c.AzureEndpoint},
		{"AZURE_OPENAI_DEPLOYMENT", c.AzureDeployment},
		{"AZURE_OPENAI_API_KEY", c.AzureAPIKey},
	}
	var missing ErrMissing
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return missing
	}
	if c.AzureTimeout <= 0 {
		return errors.New("AZURE_OPENAI_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

// AzureConfigured mirrors the health endpoint flag: endpoint and key are both present.
func (c Config) AzureConfigured() bool {
	return c.AzureEndpoint != "" && c.AzureAPIKey != ""
}
