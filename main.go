package main

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	server "crm-ev-sync/src/cmd"
	"crm-ev-sync/src/config"
	"crm-ev-sync/src/handler"
	"crm-ev-sync/src/services"
	"crm-ev-sync/src/utils"
)

func main() {
	if err := utils.InitEnvironmentVariables(); err != nil {
		log.Warnf("main: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: failed to load config: %v", err)
	}

	if cfg.APIToken == "" {
		log.Warn("main: CRM_API_TOKEN is not set; webhook requests will be rejected")
	}

	crm := services.NewCRMClient(cfg.APIBaseURL, cfg.APIToken)
	router := server.Setup(handler.New(cfg, crm))

	log.Infof("Server is running on %s", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, router); err != nil {
		log.Fatalf("main: server stopped: %v", err)
	}
}
