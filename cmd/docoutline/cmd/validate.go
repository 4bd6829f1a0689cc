package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/MeKo-Tech/docoutline/internal/schema"
	"github.com/spf13/cobra"
)

func (c *cli) newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check outline records against the output schema",
		Long: `Validate one or more JSON outline records against the embedded JSON Schema.
Every file is checked; the command fails if any of them is invalid.

Examples:
  docoutline validate out/report.json
  docoutline validate out/*.json
  docoutline validate --print-schema`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if printSchema, _ := cmd.Flags().GetBool("print-schema"); printSchema {
				_, err := cmd.OutOrStdout().Write(schema.Source())
				return err
			}
			if len(args) == 0 {
				return errors.New("requires at least one file")
			}
			return runValidate(cmd, args)
		},
	}
	cmd.Flags().Bool("print-schema", false, "print the schema and exit")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	invalid := 0
	for _, path := range args {
		data, err := os.ReadFile(path) //nolint:gosec // G304: path supplied by the user
		if err == nil {
			err = schema.Validate(data)
		}
		if err != nil {
			invalid++
			_, _ = fmt.Fprintf(out, "INVALID %s: %v\n", path, err)
			continue
		}
		_, _ = fmt.Fprintf(out, "OK      %s\n", path)
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d files failed validation", invalid, len(args))
	}
	return nil
}
