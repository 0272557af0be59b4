package main

import (
	"github.com/danmuck/lockstep/internal/coordinator"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run initiator and responder in one process",
	RunE: func(cmd *cobra.Command, args []string) error {
		scfg, err := loadSessionConfig(cfgFile)
		if err != nil {
			return err
		}
		cfg := coordinator.DefaultConfig()
		cfg.Session = scfg
		return coordinator.Run(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
