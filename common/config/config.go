package config

import (
	stderrors "errors"
	"io/fs"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/ykhdr/hashbench/common/internal/kdl"
)

const DefaultConfigPath = "./config/config.kdl"

// InitializeConfig reads the KDL file named by the first argument, or the
// default path, over defaultCfg and configures logging from it. A missing
// file at the default path yields defaultCfg.
func InitializeConfig[T any](args []string, defaultCfg T) (*T, error) {
	configPath := DefaultConfigPath
	explicit := len(args) > 0 && args[0] != ""
	if explicit {
		configPath = args[0]
	}
	config, err := kdl.UnmarshalFile[T](configPath, defaultCfg)
	if err != nil {
		if explicit || !stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "unmarshal kdl %s", configPath)
		}
		config = defaultCfg
		setupLogger(&config)
		log.Debug().Str("path", configPath).Msg("Config file not found, using defaults")
		return &config, nil
	}
	setupLogger(&config)
	return &config, nil
}

// Parse decodes an in-memory KDL document over defaultCfg without touching
// the logger.
func Parse[T any](data []byte, defaultCfg T) (*T, error) {
	config, err := kdl.Unmarshal[T](data, defaultCfg)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal kdl")
	}
	return &config, nil
}
