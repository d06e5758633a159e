package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/puyokura/pictochat/service"
)

func setupLogging(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	// The TUI owns stdout, so logs go to the file only.
	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return logFile, nil
}

func main() {
	configFile := flag.String("config", "pictochat.json", "Path to configuration file")
	flag.Parse()

	config := NewConfig(*configFile)
	if err := config.Load(); err != nil {
		fmt.Printf("Error loading config: %v\n", err)
	}

	logFile, err := setupLogging(config.LogFile)
	if err != nil {
		fmt.Printf("Failed to setup logging: %v\n", err)
		return
	}
	defer logFile.Close()

	store, err := service.NewFileStore(config.DataDir)
	if err != nil {
		log.Fatalf("Failed to open data dir: %v", err)
	}
	svc := service.New(store)
	if err := svc.Load(); err != nil {
		log.Fatalf("Error loading store: %v", err)
	}
	if config.SeedDemo {
		if err := svc.Seed(); err != nil {
			log.Printf("Error seeding demo accounts: %v", err)
		}
	}

	p := tea.NewProgram(initialModel(svc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
