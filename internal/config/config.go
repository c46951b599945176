// Package config owns endpoint configuration for daemon targets.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPort is the daemon's conventional GUI RPC port.
const DefaultPort = 31416

// Endpoint identifies one daemon instance. Password empty means the
// handshake is skipped.
type Endpoint struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Password string `toml:"password"`
}

// Addr is the dialable host:port form.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

func (e Endpoint) Validate() error {
	if strings.TrimSpace(e.Host) == "" {
		return fmt.Errorf("config: endpoint host required")
	}
	if e.Port <= 0 || e.Port > 65535 {
		return fmt.Errorf("config: endpoint port out of range: %d", e.Port)
	}
	return nil
}

// LoadEndpoint reads one endpoint from a TOML file and applies
// defaults.
func LoadEndpoint(path string) (Endpoint, error) {
	var ep Endpoint
	if err := loadToml(path, &ep); err != nil {
		return Endpoint{}, err
	}
	ep = withDefaults(ep)
	if err := ep.Validate(); err != nil {
		return Endpoint{}, err
	}
	return ep, nil
}

func withDefaults(ep Endpoint) Endpoint {
	if strings.TrimSpace(ep.Host) == "" {
		ep.Host = "127.0.0.1"
	}
	if ep.Port == 0 {
		ep.Port = DefaultPort
	}
	return ep
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}
