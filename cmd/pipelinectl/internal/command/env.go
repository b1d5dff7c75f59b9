package command

import (
	"fmt"

	"github.com/kbukum/pipelinekit/config"
	"github.com/kbukum/pipelinekit/logger"
	"github.com/kbukum/pipelinekit/registry"
)

// environment is the configuration and palette a command runs against.
type environment struct {
	cfg           *config.Config
	reg           *registry.Registry
	pipelineProps []registry.Property
}

// loadConfig reads the configuration and initializes logging from it.
func (cli *CLI) loadConfig() (*config.Config, error) {
	var opts []config.LoaderOption
	if cli.ConfigFile != "" {
		opts = append(opts, config.WithConfigFile(cli.ConfigFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, err
	}
	if len(cli.RegistryPaths) > 0 {
		cfg.Registry.Paths = cli.RegistryPaths
	}
	if cli.Debug {
		cfg.Logging.Level = "debug"
	}
	logger.Init(&cfg.Logging)
	logger.RegisterDefaults()
	return cfg, nil
}

// loadEnvironment loads the configuration plus the node registry and the
// pipeline property schema it points at.
func (cli *CLI) loadEnvironment() (*environment, error) {
	cfg, err := cli.loadConfig()
	if err != nil {
		return nil, err
	}
	reg, err := registry.Load(cfg.Registry.Paths...)
	if err != nil {
		return nil, fmt.Errorf("loading node registry: %w", err)
	}
	env := &environment{cfg: cfg, reg: reg}
	if path := cfg.Registry.PipelineProperties; path != "" {
		env.pipelineProps, err = registry.LoadProperties(path)
		if err != nil {
			return nil, fmt.Errorf("loading pipeline properties: %w", err)
		}
	}
	return env, nil
}
