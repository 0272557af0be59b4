package main

import (
	"github.com/danmuck/lockstep/internal/protocol"
	"github.com/danmuck/lockstep/internal/session"
	"github.com/spf13/cobra"
)

var initiateCmd = &cobra.Command{
	Use:   "initiate",
	Short: "Run the initiator role alone (bind, accept one peer, speak first)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ln, err := session.Listen(protocol.DefaultAddr)
		if err != nil {
			return err
		}
		defer ln.Close()

		ch, err := ln.AcceptOne()
		if err != nil {
			return err
		}
		defer ch.Close()

		eng := protocol.NewInitiator(ch, protocol.DefaultEngineConfig())
		return eng.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(initiateCmd)
}
