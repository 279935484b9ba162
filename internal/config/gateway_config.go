package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// GatewayFile is the optional TOML override for payment gateway settings:
//
//	[gateway]
//	api_url = "https://lounge.tahseeel.com/api/"
//	uid = "..."
//	timeout_seconds = 20
type GatewayFile struct {
	Gateway GatewaySection `toml:"gateway"`
}

type GatewaySection struct {
	APIURL         string `toml:"api_url"`
	UID            string `toml:"uid"`
	Password       string `toml:"pwd"`
	Secret         string `toml:"secret"`
	CallbackURL    string `toml:"callback_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LoadGatewayFile decodes a gateway TOML file.
func LoadGatewayFile(filename string) (*GatewayFile, error) {
	file := &GatewayFile{}
	if _, err := toml.DecodeFile(filename, file); err != nil {
		return nil, fmt.Errorf("failed to load gateway config file: %w", err)
	}
	return file, nil
}

// apply overrides every gateway setting present in the file.
func (f *GatewayFile) apply(cfg *GatewayConfig) {
	g := f.Gateway
	if g.APIURL != "" {
		cfg.APIURL = g.APIURL
	}
	if g.UID != "" {
		cfg.UID = g.UID
	}
	if g.Password != "" {
		cfg.Password = g.Password
	}
	if g.Secret != "" {
		cfg.Secret = g.Secret
	}
	if g.CallbackURL != "" {
		cfg.CallbackURL = g.CallbackURL
	}
	if g.TimeoutSeconds > 0 {
		cfg.TimeoutSeconds = g.TimeoutSeconds
	}
}
