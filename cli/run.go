package cli

import (
	"fmt"

	"github.com/compozy/autoflow/engine/runtime"
	"github.com/compozy/autoflow/engine/runtime/n8n"
	"github.com/compozy/autoflow/pkg/config"
	"github.com/compozy/autoflow/pkg/logger"
	"github.com/spf13/cobra"
)

func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <workflow-id>",
		Short: "Execute a deployed workflow and print the normalized result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pairs, err := cmd.Flags().GetStringArray("input")
			if err != nil {
				return err
			}
			input, err := parseInputs(pairs)
			if err != nil {
				return err
			}
			client, err := newRuntimeClient(config.FromContext(ctx))
			if err != nil {
				return err
			}
			dispatcher, err := runtime.NewDispatcher(client, runtime.WithLogger(logger.FromContext(ctx)))
			if err != nil {
				return err
			}
			res, err := dispatcher.Run(ctx, args[0], input)
			if err != nil {
				return err
			}
			if err := writeOutput(cmd, res); err != nil {
				return err
			}
			if res.Status == runtime.StatusError {
				return fmt.Errorf("workflow %s finished with status %s", args[0], res.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayP("input", "i", nil, "Execution input as key=value (repeatable)")
	addOutputFlag(cmd)
	return cmd
}

func newRuntimeClient(cfg *config.Config) (*n8n.Client, error) {
	if err := cfg.RequireProvider(); err != nil {
		return nil, err
	}
	return n8n.NewClient(n8n.Config{
		BaseURL:    cfg.Provider.BaseURL,
		APIKey:     cfg.Provider.APIKey.Value(),
		Timeout:    cfg.Provider.Timeout,
		RetryCount: cfg.Provider.RetryCount,
	})
}
