package main

import (
	"fmt"
	"io"

	"github.com/nguyenkha/demo-mpc/pkg/pool"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	"github.com/nguyenkha/demo-mpc/protocols/gg20"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call <stage>",
	Short: "Run a single stage, reading CBOR input from stdin and writing CBOR output to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return errors.Wrap(err, "read input")
		}
		pl := pool.NewPool(workers)
		defer pl.TearDown()

		caller := &gg20.Caller{Pool: pl}
		output, err := caller.Call(args[0], input)
		if err != nil {
			if culprit, ok := protocol.Culprit(err); ok {
				log.Warn().Uint16("culprit", uint16(culprit)).Msg("peer misbehaved")
			}
			return err
		}
		_, err = cmd.OutOrStdout().Write(output)
		return err
	},
}

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "List the stages accepted by call",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range protocol.Stages {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
	},
}
