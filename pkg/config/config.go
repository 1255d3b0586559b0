// Package config loads tool settings from a .env file merged with the
// process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// EnvLoginURL names the one required setting: the portal login URL.
const EnvLoginURL = "NK_LOGIN_URL"

// ErrLoginURLNotSet means the login URL is missing from both the .env
// file and the environment. This is the only fatal configuration error.
var ErrLoginURLNotSet = errors.New("config: " + EnvLoginURL + " is not set")

type Config struct {
	LoginURL string
}

// Load reads envFile (when present) and the process environment, with
// the environment taking precedence. A missing envFile is not an error;
// a missing login URL is.
func Load(envFile string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read %s: %w", envFile, err)
		}
	}
	v.AutomaticEnv()

	cfg := Config{LoginURL: v.GetString(EnvLoginURL)}
	if cfg.LoginURL == "" {
		return Config{}, ErrLoginURLNotSet
	}
	return cfg, nil
}
