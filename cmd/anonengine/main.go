package main

import (
	"log"

	"github.com/rawblock/flashengine/internal/api"
	"github.com/rawblock/flashengine/internal/config"
	"github.com/rawblock/flashengine/internal/db"
)

func main() {
	log.Println("Starting FLASH anonymization engine...")

	server := config.LoadServer()

	dbConn, err := db.Connect(server.DatabaseURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to PostgreSQL, continuing without persisting run history. Error: %v", err)
	} else {
		defer dbConn.Close()
		if err := dbConn.InitSchema(); err != nil {
			log.Printf("Warning: DB schema init failed: %v", err)
		}
	}

	defaults, err := config.LoadRunDefaults("config/run-defaults.yaml")
	if err != nil {
		log.Printf("Warning: failed to load run defaults, falling back to built-in defaults: %v", err)
	}

	wsHub := api.NewHub()
	go wsHub.Run()

	r := api.SetupRouter(dbConn, wsHub, defaults)

	log.Printf("Engine running on :%s\n", server.Port)
	if err := r.Run(":" + server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
