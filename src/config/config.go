package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the deployment-time constants: one credential and five CRM
// identifiers. Built once at startup and passed by reference; never mutated.
type Config struct {
	APIBaseURL        string
	APIToken          string
	TargetListID      int64
	MinFieldID        string
	MaxFieldID        string
	LikelihoodFieldID string
	EVFieldID         string
	ListenAddr        string
}

// Load reads the configuration from the environment. A missing API token is
// tolerated here: the handler guards it per request and answers 500, since a
// token can be rotated out from under a running process.
func Load() (*Config, error) {
	cfg := &Config{
		APIBaseURL:        os.Getenv("CRM_API_BASE_URL"),
		APIToken:          os.Getenv("CRM_API_TOKEN"),
		MinFieldID:        os.Getenv("CRM_MIN_FIELD_ID"),
		MaxFieldID:        os.Getenv("CRM_MAX_FIELD_ID"),
		LikelihoodFieldID: os.Getenv("CRM_LIKELIHOOD_FIELD_ID"),
		EVFieldID:         os.Getenv("CRM_EV_FIELD_ID"),
		ListenAddr:        os.Getenv("SERVER_ADDR"),
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("missing CRM_API_BASE_URL environment variable")
	}

	for name, val := range map[string]string{
		"CRM_MIN_FIELD_ID":        cfg.MinFieldID,
		"CRM_MAX_FIELD_ID":        cfg.MaxFieldID,
		"CRM_LIKELIHOOD_FIELD_ID": cfg.LikelihoodFieldID,
		"CRM_EV_FIELD_ID":         cfg.EVFieldID,
	} {
		if val == "" {
			return nil, fmt.Errorf("missing %s environment variable", name)
		}
	}

	listID, err := strconv.ParseInt(os.Getenv("CRM_TARGET_LIST_ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CRM_TARGET_LIST_ID: %w", err)
	}
	cfg.TargetListID = listID

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	return cfg, nil
}
