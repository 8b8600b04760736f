package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/servicecore/config"
	"github.com/kbukum/servicecore/version"
)

const appName = "servicecore"

type rootOptions struct {
	configFile string
	envFile    string
	envPrefix  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Service registry with deferred readiness callbacks",
		Long:          `servicecore constructs the configured running services, tracks their readiness and runs callbacks as each one becomes ready.`,
		Version:       version.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "",
		"config file (default: searched under cmd/servicecore, config/ and the working directory)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "",
		"dotenv file loaded before the config (default: .env next to the config)")
	cmd.PersistentFlags().StringVar(&opts.envPrefix, "env-prefix", "SERVICECORE",
		"prefix of environment variables that override config keys")

	cmd.AddCommand(
		newRunCmd(opts),
		newServicesCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func (o *rootOptions) load() (*Config, error) {
	loaderOpts := []config.LoaderOption{config.WithEnvPrefix(o.envPrefix)}
	if o.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(o.envFile))
	}

	cfg := &Config{}
	if err := config.LoadConfig(appName, cfg, loaderOpts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
