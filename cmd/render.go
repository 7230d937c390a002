package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newRenderCmd(app *app) *cobra.Command {
	var format string
	var status bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Re-render an exported roster",
		Long:  "render reads a roster in the export format from stdin, imports it and prints it again in the requested format, or as a status card with --status.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.load(cmd.ErrOrStderr()); err != nil {
				return err
			}

			input, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read roster: %w", err)
			}

			c := app.newCore()
			if _, err := c.service.Import(cmd.Context(), string(input)); err != nil {
				return err
			}

			var out string
			if status {
				out, err = app.renderStatus(cmd.Context(), c.service)
			} else {
				out, err = c.service.Display(cmd.Context(), format)
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: default or grid")
	cmd.Flags().BoolVar(&status, "status", false, "print the status card instead of the roster")

	return cmd
}
