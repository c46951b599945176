package main

import (
	"strings"

	"github.com/danmuck/boincctl/internal/config"
)

// endpointFlags are the command-line overrides for one daemon target.
type endpointFlags struct {
	configPath string
	host       string
	port       int
	password   string
}

// resolveEndpoint builds the target endpoint: the optional TOML file
// first, then flag overrides, then defaults.
func resolveEndpoint(f endpointFlags) (config.Endpoint, error) {
	var ep config.Endpoint
	if strings.TrimSpace(f.configPath) != "" {
		loaded, err := config.LoadEndpoint(f.configPath)
		if err != nil {
			return config.Endpoint{}, err
		}
		ep = loaded
	}
	if strings.TrimSpace(f.host) != "" {
		ep.Host = f.host
	}
	if f.port != 0 {
		ep.Port = f.port
	}
	if f.password != "" {
		ep.Password = f.password
	}
	if strings.TrimSpace(ep.Host) == "" {
		ep.Host = "127.0.0.1"
	}
	if ep.Port == 0 {
		ep.Port = config.DefaultPort
	}
	if err := ep.Validate(); err != nil {
		return config.Endpoint{}, err
	}
	return ep, nil
}
