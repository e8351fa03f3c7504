package core

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string // DEV (local; default), TEST, PROD
	AppName  string
	Build    string
	Debug    bool
	TestMode bool
	LogLevel string // debug | info | warn | error | off

	RollbarToken string

	Storage struct {
		Root    string
		FileExt string
	}
}

// NewConfig reads the configuration from the environment, after loading `config/.env.<env>` if it exists.
// Variables are prefixed with the environment name, e.g. DEV_STORAGEROOT=/var/lib/catalog.
func NewConfig(workDir ...string) (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Catalog")
	v.SetDefault("build", "dev")
	v.SetDefault("logLevel", "info")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("storageRoot", "data")
	v.SetDefault("fileExt", ".csv")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	wd := "."
	if len(workDir) > 0 && workDir[0] != "" {
		wd = workDir[0]
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		LogLevel:     strings.ToLower(v.GetString("logLevel")),
		RollbarToken: v.GetString("rollbarToken"),
	}
	conf.Storage.Root = v.GetString("storageRoot")
	conf.Storage.FileExt = v.GetString("fileExt")
	if !strings.HasPrefix(conf.Storage.FileExt, ".") {
		conf.Storage.FileExt = "." + conf.Storage.FileExt
	}
	return conf, nil
}
