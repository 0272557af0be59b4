package main

import (
	"github.com/danmuck/lockstep/internal/protocol"
	"github.com/danmuck/lockstep/internal/session"
	"github.com/spf13/cobra"
)

var respondCmd = &cobra.Command{
	Use:   "respond",
	Short: "Run the responder role alone (connect with backoff, listen first)",
	RunE: func(cmd *cobra.Command, args []string) error {
		scfg, err := loadSessionConfig(cfgFile)
		if err != nil {
			return err
		}

		ch, err := session.Dial(cmd.Context(), protocol.DefaultAddr, scfg)
		if err != nil {
			return err
		}
		defer ch.Close()

		eng := protocol.NewResponder(ch, protocol.DefaultEngineConfig())
		return eng.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(respondCmd)
}
