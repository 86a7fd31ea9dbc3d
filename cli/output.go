package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", OutputFormatJSON, "Output format (json, yaml)")
}

func writeOutput(cmd *cobra.Command, data any) error {
	format, err := cmd.Flags().GetString("output")
	if err != nil {
		format = OutputFormatJSON
	}
	return writeData(cmd.OutOrStdout(), format, data)
}

func writeData(w io.Writer, format string, data any) error {
	switch strings.ToLower(format) {
	case OutputFormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case OutputFormatYAML:
		// Round-trip through JSON so field names follow the json tags.
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		out, err := yaml.JSONToYAML(raw)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// readPlanFile returns the plan at path as JSON; YAML files are converted. "-" reads stdin.
func readPlanFile(cmd *cobra.Command, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	if gjson.ValidBytes(data) {
		return data, nil
	}
	converted, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("plan file is neither JSON nor YAML: %w", err)
	}
	return converted, nil
}

// parseInputs turns repeated key=value flags into an input map. Values that are valid JSON
// keep their JSON type.
func parseInputs(pairs []string) (map[string]any, error) {
	inputs := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid input %q: expected key=value", pair)
		}
		if gjson.Valid(value) {
			inputs[key] = gjson.Parse(value).Value()
			continue
		}
		inputs[key] = value
	}
	return inputs, nil
}
