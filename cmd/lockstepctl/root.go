package main

import (
	"github.com/danmuck/lockstep/internal/logging"
	"github.com/spf13/cobra"
)

var cfgFile string // path to optional dial-plumbing config

var rootCmd = &cobra.Command{
	Use:   "lockstepctl",
	Short: "Deterministic two-party turn-taking over TCP",
	Long: `lockstepctl drives a fixed-round PING/PONG exchange between an
initiator and a responder over a loopback TCP stream. The ordered stream is
the only synchronization primitive: each side's turn is gated on the peer's
token.

Use "run" for both roles in one process, or "initiate" and "respond" in two
separate processes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.ConfigureRuntime()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional TOML config for dial plumbing")
}
