// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/streamio/streamio/constant"
	"github.com/streamio/streamio/filesystem"
	"github.com/streamio/streamio/key"
	"github.com/streamio/streamio/where"
)

// EnvKeyReplacer is a strings.Replacer used to normalize configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup initializes the global configuration state, including defaults, environment bindings, and localized file resolution.
func Setup() error {
	viper.SetConfigName(constant.Streamio)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Streamio)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return nil
}

// ListenAddr returns the configured bind address. Only loopback hosts are accepted.
func ListenAddr() (string, error) {
	host, err := Default[key.ServerHost].Parse(viper.GetString(key.ServerHost))
	if err != nil {
		return "", err
	}

	port, err := Default[key.ServerPort].Parse(viper.GetString(key.ServerPort))
	if err != nil {
		return "", err
	}

	return net.JoinHostPort(host.(string), strconv.Itoa(port.(int))), nil
}

// File is the path of the config file written by Save.
func File() string {
	return filepath.Join(where.Config(), constant.Streamio+".toml")
}

// Save writes the in-memory configuration, creating the file when missing.
func Save() error {
	err := viper.WriteConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return viper.SafeWriteConfig()
	}
	return err
}

// IsLoopback reports whether host names the local machine.
func IsLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Timeout returns the per-request upstream timeout.
func Timeout() time.Duration {
	secs := viper.GetInt(key.HTTPTimeout)
	if secs <= 0 {
		secs = Default[key.HTTPTimeout].Value.(int)
	}
	return time.Duration(secs) * time.Second
}
