package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultPort is the port AList listens on out of the box
	DefaultPort = 5244
	MinPort     = 1
	MaxPort     = 65535
)

// ErrPortRange is returned when a port is outside [MinPort, MaxPort]
var ErrPortRange = errors.New("port must be between 1 and 65535")

// Config is the persisted launcher record
type Config struct {
	Path string `json:"path"`
	Port int    `json:"port"`
}

// NewConfig creates a config, falling back to DefaultPort for an invalid port
func NewConfig(path string, port int) *Config {
	if ValidatePort(port) != nil {
		port = DefaultPort
	}
	return &Config{Path: path, Port: port}
}

// UnmarshalJSON accepts a missing, numeric-string or garbage port and
// replaces anything unusable with DefaultPort.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw struct {
		Path string          `json:"path"`
		Port json.RawMessage `json:"port"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Path = raw.Path
	c.Port = decodePort(raw.Port)
	return nil
}

func decodePort(raw json.RawMessage) int {
	if len(raw) == 0 {
		return DefaultPort
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if port, err := ParsePort(n.String()); err == nil {
			return port
		}
		return DefaultPort
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if port, err := ParsePort(s); err == nil {
			return port
		}
	}
	return DefaultPort
}

// ValidatePort checks that port is usable for a TCP listener
func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return fmt.Errorf("%w: got %d", ErrPortRange, port)
	}
	return nil
}

// ParsePort parses user input such as " 5244 " into a validated port
func ParsePort(text string) (int, error) {
	text = strings.TrimSpace(text)
	port, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrPortRange, text)
	}
	if err := ValidatePort(port); err != nil {
		return 0, err
	}
	return port, nil
}

// FormatAddress joins an address and port, bracketing IPv6 literals
func FormatAddress(ip string, port int) string {
	if strings.Contains(ip, ":") {
		return fmt.Sprintf("[%s]:%d", ip, port)
	}
	return fmt.Sprintf("%s:%d", ip, port)
}
