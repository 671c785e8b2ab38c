package config

import (
	_ "embed"
	"os"
	"path/filepath"

	utilsconfig "github.com/quantumauth-io/quantum-go-utils/config"

	appconfig "github.com/quantumauth-io/quantum-web3-demo/internal/config"
)

//go:embed config.yaml
var EmbeddedConfigYAML []byte

// Load reads config.yaml from the usual search paths, falling back to the
// embedded copy, then applies defaults and environment overrides.
func Load() (*appconfig.Config, error) {
	home, _ := os.UserHomeDir()
	paths := []string{
		filepath.Join(home, ".config", "quantum-web3-demo"),
		filepath.Join(home, "config"),
		".",
	}

	cfg, err := utilsconfig.ParseConfigWithEmbedded[appconfig.Config](paths, EmbeddedConfigYAML)
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.ApplyFallbackServiceFromEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyInjectedFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
