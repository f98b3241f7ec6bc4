package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// fileOverrides mirrors Config with a YAML tag per field the operator is
// allowed to override from a config file. File values win where both
// are set, since LoadWithFile runs Load first and then overwrites every
// field the file sets to a non-empty value.
type fileOverrides struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Recognition struct {
		BaseURL          string `yaml:"baseUrl"`
		CollectionPrefix string `yaml:"collectionPrefix"`
	} `yaml:"recognition"`
	Redis struct {
		Host string `yaml:"host"`
		Port string `yaml:"port"`
	} `yaml:"redis"`
}

// LoadWithFile loads Config from the environment as Load does, then
// applies any values set in the YAML file at path on top of the
// environment-sourced defaults for fields the file leaves non-empty.
// A missing file is not an error: file-based overrides are optional,
// matching the rest of the config package's tolerant-defaults style.
func LoadWithFile(path string) (*Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	var overrides fileOverrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, err
	}

	if overrides.Database.URL != "" {
		cfg.Database.URL = overrides.Database.URL
	}
	if overrides.Recognition.BaseURL != "" {
		cfg.Recognition.BaseURL = overrides.Recognition.BaseURL
	}
	if overrides.Recognition.CollectionPrefix != "" {
		cfg.Recognition.CollectionPrefix = overrides.Recognition.CollectionPrefix
	}
	if overrides.Redis.Host != "" {
		cfg.Redis.Host = overrides.Redis.Host
	}
	if overrides.Redis.Port != "" {
		cfg.Redis.Port = overrides.Redis.Port
	}

	return cfg, nil
}
