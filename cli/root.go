package cli

import (
	"context"
	"fmt"

	"github.com/compozy/autoflow/engine/infra/monitoring"
	"github.com/compozy/autoflow/pkg/config"
	"github.com/compozy/autoflow/pkg/logger"
	"github.com/spf13/cobra"
)

const (
	defaultConfigFile = "autoflow.yaml"
	defaultEnvFile    = ".env"
)

// RootCmd assembles the autoflow command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "autoflow",
		Short:         "Validate, compile and run automation plans",
		Version:       monitoring.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return SetupGlobalConfig(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.String("config", defaultConfigFile, "Path to the YAML config file")
	flags.String("env-file", defaultEnvFile, "Path to a dotenv file loaded before the environment")
	flags.String("log-level", "", "Log level (debug, info, warn, error, disabled)")
	flags.Bool("log-json", false, "Output logs in JSON format")
	flags.Bool("log-source", false, "Include source file and line in logs")

	root.AddCommand(
		PlanCmd(),
		TemplateCmd(),
		RunCmd(),
		ServeCmd(),
	)
	return root
}

// SetupGlobalConfig loads configuration and the logger and attaches both to the command context.
func SetupGlobalConfig(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	logLevel, logJSON, logSource, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return err
	}
	sources := []config.Source{}
	if configFile != "" {
		sources = append(sources, config.NewYAMLProvider(configFile))
	}
	if logLevel != "" {
		sources = append(sources, config.NewCLIProvider(map[string]any{"runtime.log_level": logLevel}))
	}
	cfg, err := config.NewService().Load(ctx, sources...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.SetupLogger(cfg.Runtime.LogLevel, logJSON, logSource)
	ctx = logger.ContextWithLogger(ctx, log)
	ctx = config.ContextWithConfig(ctx, cfg)
	cmd.SetContext(ctx)
	return nil
}
