package main

import (
	"log"
	"net/http"
	"os"

	"github.com/interview-prep/studyclient/internal/config"
	"github.com/interview-prep/studyclient/internal/devserver"
)

func main() {
	cfg := config.LoadServer()

	logger := log.New(os.Stdout, "", log.LstdFlags)
	handler := devserver.NewRouter(devserver.NewStore(), devserver.Options{
		Prefix:      cfg.APIPrefix,
		Secret:      []byte(cfg.DevSecret),
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})

	log.Printf("Dev API server starting on :%s (prefix %s)", cfg.Port, cfg.APIPrefix)
	log.Printf("Clients must send tokens signed with PREP_DEV_SECRET")
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
