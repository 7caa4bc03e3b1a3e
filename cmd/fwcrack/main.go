// cmd/fwcrack: recover the substitution cipher of x5a firmware updates.
//
// Usage:
//
//	fwcrack info update.x5a
//	fwcrack locate region.bin
//	fwcrack search update.x5a --target RBB-J530 [--limit N] [--out DIR --visualize]
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fwcrack",
		Short:         "Recover the byte cipher protecting x5a firmware update files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolP("verbose", "V", false, "Enable debug logging")

	root.AddCommand(newInfoCmd())
	root.AddCommand(newLocateCmd())
	root.AddCommand(newSearchCmd())
	return root
}

func main() {
	log.SetHandler(cli.New(os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.WithError(err).Error("fwcrack failed")
		stop()
		os.Exit(1)
	}
}
