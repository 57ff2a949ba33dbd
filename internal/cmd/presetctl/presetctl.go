// Package presetctl implements the operator CLI for a running preset
// server. Every command is a thin wrapper over the HTTP API.
package presetctl

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	entrypoint "github.com/lumenfield/lumenfield/internal/platform/cmd"
)

const defaultAddr = "http://localhost:8080"

// New builds the presetctl command tree.
func New() *cobra.Command {
	var addr string

	root := &cobra.Command{
		Use:           entrypoint.ServicePresetctl,
		Short:         "inspect and manage presets on a running server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&addr, "addr", defaultAddr, "preset server address")

	var listType string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list factory and user presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := newClient(addr).list(cmd.Context(), listType)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIER\tID\tNAME\tTYPE\tDEFAULT")
			for _, p := range list.Factory {
				fmt.Fprintf(w, "factory\t%s\t%s\t%s\t%t\n", p.ID, p.Name, p.GeneratorType, p.IsDefault)
			}
			for _, p := range list.User {
				fmt.Fprintf(w, "user\t%s\t%s\t%s\t%t\n", p.ID, p.Name, p.GeneratorType, p.IsUserDefault)
			}
			return w.Flush()
		},
	}
	listCmd.Flags().StringVar(&listType, "type", "", "filter by generator type")

	var exportIDs []string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "export user presets as a JSON envelope",
		RunE: func(cmd *cobra.Command, args []string) error {
			envelope, err := newClient(addr).export(cmd.Context(), exportIDs)
			if err != nil {
				return err
			}
			var pretty json.RawMessage = envelope
			out, err := json.MarshalIndent(pretty, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	exportCmd.Flags().StringSliceVar(&exportIDs, "ids", nil, "preset ids to export (default all)")

	importCmd := &cobra.Command{
		Use:   "import [file]",
		Short: "import a preset envelope from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload []byte
			var err error
			if len(args) == 0 || args[0] == "-" {
				payload, err = io.ReadAll(cmd.InOrStdin())
			} else {
				payload, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read envelope: %w", err)
			}

			summary, err := newClient(addr).importEnvelope(cmd.Context(), payload)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "imported %d preset(s)\n", len(summary.ImportedIDs))
			for _, reason := range summary.SkippedDuplicates {
				fmt.Fprintf(out, "skipped: %s\n", reason)
			}
			for _, entry := range summary.Errors {
				fmt.Fprintf(out, "error: %s\n", entry)
			}
			return nil
		},
	}

	setDefaultCmd := &cobra.Command{
		Use:   "set-default [generator-type] [preset-id]",
		Short: "make a user preset the default for its generator type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			preset, err := newClient(addr).setDefault(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "default for %s is now %q (%s)\n",
				preset.GeneratorType, preset.Name, preset.ID)
			return nil
		},
	}

	clearDefaultCmd := &cobra.Command{
		Use:   "clear-default [generator-type]",
		Short: "clear the user default for a generator type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient(addr).clearDefault(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared default for %s\n", args[0])
			return nil
		},
	}

	effectiveDefaultCmd := &cobra.Command{
		Use:   "effective-default [generator-type]",
		Short: "show which default wins for a generator type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			effective, err := newClient(addr).effectiveDefault(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case effective.User != nil:
				fmt.Fprintf(out, "%s: %q (%s)\n", effective.Source, effective.User.Name, effective.User.ID)
			case effective.Factory != nil:
				fmt.Fprintf(out, "%s: %q (%s)\n", effective.Source, effective.Factory.Name, effective.Factory.ID)
			default:
				fmt.Fprintf(out, "%s: generator built-ins apply\n", effective.Source)
			}
			return nil
		},
	}

	lastActiveCmd := &cobra.Command{
		Use:   "last-active",
		Short: "show the last-active preset id",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := newClient(addr).lastActive(cmd.Context())
			if err != nil {
				return err
			}
			if id == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "none")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	root.AddCommand(listCmd, exportCmd, importCmd, setDefaultCmd, clearDefaultCmd, effectiveDefaultCmd, lastActiveCmd)
	return root
}
