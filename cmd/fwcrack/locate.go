package main

import (
	"os"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"x5a-fwcrack/internal/locate"
	"x5a-fwcrack/internal/report"
	"x5a-fwcrack/internal/visualize"
)

func newLocateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locate <BIN_FILE>",
		Short: "Find the start/length/payload record inside a raw firmware region",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrapf(err, "read %s", args[0])
			}

			skip, _ := cmd.Flags().GetInt("skip")
			if skip < 0 || skip > len(raw) {
				return errors.Errorf("skip %d outside file of %d bytes", skip, len(raw))
			}

			blk, err := locate.Locate(raw[skip:])
			if err != nil {
				return err
			}
			blk.Offset += skip
			report.Blocks(cmd.OutOrStdout(), []locate.Block{blk})

			if dump, _ := cmd.Flags().GetString("dump"); dump != "" {
				if err := os.WriteFile(dump, blk.Payload, 0644); err != nil {
					return errors.Wrapf(err, "write %s", dump)
				}
				log.WithFields(log.Fields{"path": dump, "bytes": len(blk.Payload)}).Info("wrote payload")
			}

			if mapPath, _ := cmd.Flags().GetString("map"); mapPath != "" {
				if err := visualize.Save(mapPath, visualize.ByteMap(blk.Payload, visualize.DefaultWidth)); err != nil {
					return err
				}
				log.WithField("path", mapPath).Info("wrote payload byte map")
			}
			return nil
		},
	}
	cmd.Flags().Int("skip", 0, "Bytes to skip before the firmware region")
	cmd.Flags().String("dump", "", "Write the located payload to this file")
	cmd.Flags().String("map", "", "Write a byte map of the payload (.webp or .tga)")
	return cmd
}
