package bootstrap

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const EnvFileEnv = "ENV_FILE"

// LoadEnvFiles loads environment files without overriding variables that are already set.
// When ENV_FILE is set only that file is read, otherwise .env.local and then .env.
// Missing files are ignored.
func LoadEnvFiles() error {
	if envFile := os.Getenv(EnvFileEnv); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}
