// Command validate-config loads the environment the same way the server
// does and prints the resolved configuration, so deployment problems show
// up before a restart.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/glucoguide/insulin-tracker/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config invalid: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("port:            %s\n", cfg.Port)
	fmt.Printf("storage backend: %s\n", cfg.StorageBackend)
	fmt.Printf("session backend: %s\n", cfg.SessionBackend)
	fmt.Printf("ai provider:     %s\n", cfg.AIProvider)
	fmt.Printf("gemini key set:  %v\n", cfg.GeminiAPIKey != "")
	fmt.Printf("openai key set:  %v\n", cfg.OpenAIAPIKey != "")
	if cfg.StorageBackend == config.BackendPostgres {
		fmt.Printf("postgres:        %s@%s:%s/%s\n", cfg.DB.User, cfg.DB.Host, cfg.DB.Port, cfg.DB.DBName)
	}
	if cfg.StorageBackend == config.BackendRedis || cfg.SessionBackend == config.BackendRedis {
		fmt.Printf("redis:           %s:%s\n", cfg.Redis.Host, cfg.Redis.Port)
	}
	fmt.Println("config OK")
}
