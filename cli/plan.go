package cli

import (
	"github.com/compozy/autoflow/engine/apps"
	"github.com/compozy/autoflow/engine/compiler"
	"github.com/compozy/autoflow/engine/plan"
	"github.com/spf13/cobra"
)

func PlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Work with workflow plans",
	}
	cmd.AddCommand(planValidateCmd(), planCompileCmd(), planAppsCmd(), planSchemaCmd())
	return cmd
}

func loadPlan(cmd *cobra.Command, path string) (*plan.Plan, error) {
	data, err := readPlanFile(cmd, path)
	if err != nil {
		return nil, err
	}
	return plan.Parse(data)
}

func planValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a plan and print its normalized form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPlan(cmd, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd, map[string]any{"plan": p, "startActions": plan.StartActions(p)})
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func planCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a plan into a runtime graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPlan(cmd, args[0])
			if err != nil {
				return err
			}
			graph, err := compiler.Compile(p)
			if err != nil {
				return err
			}
			return writeOutput(cmd, graph)
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func planAppsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apps <file>",
		Short: "List the apps a plan requires",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPlan(cmd, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd, apps.ResolveRequiredApps(p))
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func planSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the plan JSON Schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeOutput(cmd, plan.JSONSchema())
		},
	}
	addOutputFlag(cmd)
	return cmd
}
