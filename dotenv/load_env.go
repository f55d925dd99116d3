package dotenv

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadEnv loads KEY=VALUE pairs from the given files into the process
// environment. With no arguments it reads ./.env and silently skips it
// when absent. Variables already set in the environment win.
func LoadEnv(envPath ...string) error {
	if len(envPath) == 0 {
		err := godotenv.Load(".env")
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	return godotenv.Load(envPath...)
}

// OverloadEnv is LoadEnv but file values replace existing variables.
func OverloadEnv(envPath ...string) error {
	return godotenv.Overload(envPath...)
}
