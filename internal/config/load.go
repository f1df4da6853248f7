package config

import (
	"github.com/spf13/afero"
	"github.com/tauraamui/dragonplayer/pkg/configdef"
	"github.com/tauraamui/dragonplayer/pkg/log"
)

func load() (configdef.Values, error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return configdef.Values{}, err
	}

	exists, err := afero.Exists(fs, configPath)
	if err != nil {
		return configdef.Values{}, err
	}
	if !exists {
		log.Info("No config file at %s, using defaults", configPath)
		return defaultValues(), nil
	}

	log.Info("Resolved config file location: %s", configPath)
	file, err := readConfigFile(configPath)
	if err != nil {
		return configdef.Values{}, err
	}

	var values configdef.Values
	if err := unmarshal(file, &values); err != nil {
		return configdef.Values{}, err
	}

	loadDefaults(&values)

	if err = values.RunValidate(); err != nil {
		return configdef.Values{}, err
	}

	return values, nil
}
