package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port               string
	Timezone           string
	DBPath             string
	CatalogFile        string // YAML overrides, optional
	CatalogXLSX        string // criteria sheet, optional
	EnableActorHeaders bool
	NotifyWebhookURL   string
}

func Load() AppConfig {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("[cfg] No .env file found or error loading: %v", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function, so tests don't have to
// touch the process environment.
func FromEnv(getenv func(string) string) AppConfig {
	get := func(k, def string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return def
	}
	cfg := AppConfig{
		Port:               get("PORT", "8080"),
		Timezone:           get("TZ", "Asia/Ho_Chi_Minh"),
		DBPath:             get("DB_PATH", "beanline.db"),
		CatalogFile:        get("CATALOG_FILE", ""),
		CatalogXLSX:        get("CATALOG_XLSX", ""),
		EnableActorHeaders: get("ENABLE_ACTOR_HEADERS", "false") == "true",
		NotifyWebhookURL:   get("NOTIFY_WEBHOOK_URL", ""),
	}
	log.Printf("[cfg] %+v", cfg)
	return cfg
}
