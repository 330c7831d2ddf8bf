package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "Manage installed story formats",
}

var formatsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed story formats",
	RunE:  runFormatsList,
}

var formatsInstallCmd = &cobra.Command{
	Use:   "install <url>",
	Short: "Install a story format from a format script URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runFormatsInstall,
}

func init() {
	formatsCmd.AddCommand(formatsListCmd)
	formatsCmd.AddCommand(formatsInstallCmd)
	rootCmd.AddCommand(formatsCmd)
}

func runFormatsList(cmd *cobra.Command, args []string) error {
	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	formats, err := svc.Store().Formats()
	if err != nil {
		return err
	}
	for _, f := range formats {
		var notes []string
		if f.UserAdded {
			notes = append(notes, "user-added")
		}
		if f.Loaded {
			notes = append(notes, "loaded")
		}
		suffix := ""
		if len(notes) > 0 {
			suffix = " (" + strings.Join(notes, ", ") + ")"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s%s\n", f.Name, f.Version, suffix)
	}
	return nil
}

func runFormatsInstall(cmd *cobra.Command, args []string) error {
	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	created, err := svc.CreateFormatFromURL(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "installed %s %s\n", created.Name, created.Version)
	return nil
}
