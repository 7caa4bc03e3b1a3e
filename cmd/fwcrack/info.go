package main

import (
	"bytes"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"x5a-fwcrack/internal/report"
	"x5a-fwcrack/internal/visualize"
	"x5a-fwcrack/internal/x5a"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <X5A_FILE>",
		Short: "Validate an update file and print its headers, keys and firmware block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := x5a.ReadFile(args[0])
			if err != nil {
				return err
			}
			report.Summary(cmd.OutOrStdout(), f)

			mapPath, _ := cmd.Flags().GetString("map")
			if mapPath == "" {
				return nil
			}
			width, _ := cmd.Flags().GetInt("map-width")
			payload := bytes.Join(f.Encrypted(), nil)
			img := visualize.Scale(visualize.ByteMap(payload, visualize.DefaultWidth), width)
			if err := visualize.Save(mapPath, img); err != nil {
				return errors.Wrap(err, "byte map")
			}
			log.WithField("path", mapPath).Info("wrote encrypted payload byte map")
			return nil
		},
	}
	cmd.Flags().String("map", "", "Write a byte map of the encrypted payload (.webp or .tga)")
	cmd.Flags().Int("map-width", 0, "Byte map width in pixels (default: one pixel per byte)")
	return cmd
}
