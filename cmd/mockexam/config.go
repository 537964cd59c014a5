package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/mockexam/internal/config"
	"github.com/jackzampolin/mockexam/internal/home"
	"github.com/jackzampolin/mockexam/internal/output"
	"github.com/jackzampolin/mockexam/internal/svcctx"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:         "init [path]",
	Short:       "Write a default config file (default: ~/.mockexam/config.yaml)",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{skipServices: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		} else {
			h, err := home.New(homeDir)
			if err != nil {
				return err
			}
			if err := h.EnsureExists(); err != nil {
				return err
			}
			path = h.ConfigPath()
		}
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cm := svcctx.ConfigFrom(ctx)
		if cm == nil {
			return fmt.Errorf("config not loaded")
		}
		return output.Write(cmd.OutOrStdout(), svcctx.OutputFrom(ctx), cm.Get())
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
