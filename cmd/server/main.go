package main

import (
	"log"

	_ "busyboard/docs"
	"busyboard/internal/config"
	"busyboard/internal/server"
)

// @title           BusyBoard API
// @version         1.0
// @description     Kanban-style task boards: users, boards, invited collaborators, and cards.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
