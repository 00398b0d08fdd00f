package main

import (
	"log"

	"github.com/joho/godotenv"

	corecmd "saludbot/core/cmd"
	coreconfig "saludbot/core/config"
	"saludbot/internal/bot"
)

func main() {
	// .env is optional; real deployments inject env vars directly.
	_ = godotenv.Load()

	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "configs/saludbot.yaml",
		Bootstrap: func(cfg *coreconfig.Config) (corecmd.TelegramApp, error) {
			return bot.New(cfg)
		},
	})
	if err != nil {
		log.Fatalf("saludbot: %v", err)
	}
}
