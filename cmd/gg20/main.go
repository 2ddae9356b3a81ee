// Command gg20 runs the stages of GG20 threshold ECDSA.
//
// Stages can be called one at a time on CBOR input, for use by an orchestrator
// in another process, or chained in a single process for demonstration.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	workers  int

	rootCmd = &cobra.Command{
		Use:           "gg20",
		Short:         "GG20 threshold ECDSA over secp256k1",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			zerolog.SetGlobalLevel(level)
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "worker pool size, 0 uses every CPU")
	rootCmd.AddCommand(callCmd, stagesCmd, demoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("gg20 failed")
		os.Exit(1)
	}
}
