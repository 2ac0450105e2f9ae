package config

import (
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Load reads the YAML config at path (if it exists) and applies
// READYROOM_* environment overrides on top.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, err
			}
			return &cfg, nil
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
