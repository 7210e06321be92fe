package main

import (
	"log"

	_ "taskmanager/docs"
	"taskmanager/internal/config"
	"taskmanager/internal/logger"
	"taskmanager/internal/server"
)

// @title           Task Manager API
// @version         1.0
// @description     Single-user task list: create, read, update, delete, filter, sort and paginate tasks.

// @host      localhost:8080
// @BasePath  /

// @schemes http
func main() {
	cfg := config.Load()
	appLog := logger.New(cfg.LogLevel, cfg.LogFormat)

	s, err := server.Init(cfg, appLog)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
