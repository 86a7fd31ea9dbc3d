package cli

import (
	"github.com/compozy/autoflow/engine/template"
	"github.com/compozy/autoflow/engine/template/builtin"
	"github.com/spf13/cobra"
)

func TemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Browse templates and build plans from them",
	}
	cmd.AddCommand(templateListCmd(), templateBuildCmd())
	return cmd
}

type templateInfo struct {
	template.Metadata
	Inputs []template.Input `json:"inputs"`
}

func templateListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := builtin.NewRegistry()
			if err != nil {
				return err
			}
			out := []templateInfo{}
			for _, meta := range reg.List() {
				tpl, _ := reg.Get(meta.Name)
				out = append(out, templateInfo{Metadata: meta, Inputs: tpl.RequiredInputs()})
			}
			return writeOutput(cmd, out)
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func templateBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <name>",
		Short: "Build a validated plan from a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := cmd.Flags().GetStringArray("input")
			if err != nil {
				return err
			}
			inputs, err := parseInputs(pairs)
			if err != nil {
				return err
			}
			reg, err := builtin.NewRegistry()
			if err != nil {
				return err
			}
			p, err := template.NewService(reg).Build(cmd.Context(), args[0], inputs)
			if err != nil {
				return err
			}
			return writeOutput(cmd, p)
		},
	}
	cmd.Flags().StringArrayP("input", "i", nil, "Template input as key=value (repeatable)")
	addOutputFlag(cmd)
	return cmd
}
