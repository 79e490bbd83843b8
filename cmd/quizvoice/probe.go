package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProbeCommand(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Report which audio devices are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}

			availability := buildManager(cfg, nil, logger).Availability()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "audio_output: %t\n", availability.AudioOutput)
			fmt.Fprintf(out, "microphone:   %t\n", availability.Microphone)
			return nil
		},
	}
}
