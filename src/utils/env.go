package utils

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const ENV_FILENAME = ".env"

// InitEnvironmentVariables loads the local .env file. Production hosts
// provision real environment variables and carry no .env file.
func InitEnvironmentVariables() error {
	if os.Getenv("GO_ENV") == "production" {
		log.Info("Running in production environment")
		return nil
	}

	if err := godotenv.Load(ENV_FILENAME); err != nil {
		return fmt.Errorf("failed to load %s file: %v", ENV_FILENAME, err)
	}

	return nil
}
