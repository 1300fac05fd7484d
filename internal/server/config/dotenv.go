package config

import (
	"errors"
	"io/fs"

	"github.com/dmitrijs2005/taskapi/internal/flagx"
	"github.com/joho/godotenv"
)

// loadDotEnv copies variables from a dotenv file into the process
// environment without overriding values that are already set. The file is
// the one named by -env-file, or ".env" in the working directory. A missing
// default file is fine; a missing or malformed explicit file panics, like a
// bad JSON config does.
func loadDotEnv() {
	path := flagx.ConfigFileFlags().Env
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	err := godotenv.Load(path)
	if err == nil {
		return
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return
	}
	panic(err)
}
