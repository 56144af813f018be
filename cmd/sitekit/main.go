package main

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/yusvaaji/sitekit"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	env := sitekit.EnvOr("APP_ENV", sitekit.EnvOr("NODE_ENV", "development"))

	cfg := sitekit.SiteConfig{
		Name: sitekit.EnvOr("SITE_NAME", "Ruang Karya Teknologi"),
		URL:  strings.TrimSuffix(sitekit.EnvOr("SITE_URL", "https://ruangkarya.id"), "/"),
		Env:  env,

		Addr:        ":" + sitekit.EnvOr("PORT", "3000"),
		StaticDir:   sitekit.EnvOr("STATIC_DIR", "public"),
		ContentPath: sitekit.EnvOr("CONTENT_PATH", "content/site.json"),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		PasswordHash:  os.Getenv("CMS_PASSWORD_HASH"),

		VisitsEnabled: os.Getenv("VISITS_DB_PATH") != "",
		VisitsDBPath:  os.Getenv("VISITS_DB_PATH"),
	}

	if env == "production" {
		if cfg.SessionSecret == "" {
			log.Fatal("Missing SESSION_SECRET (required in production).")
		}
		if cfg.PasswordHash == "" {
			log.Fatal("Missing CMS_PASSWORD_HASH (required in production).")
		}
	}

	app := sitekit.New(cfg)
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
