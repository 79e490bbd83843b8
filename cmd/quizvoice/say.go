package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSayCommand(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "say <text>",
		Short: "Speak text once through the audio output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}

			cfg.Audio.Source = "none"
			manager := buildManager(cfg, nil, logger)

			artifact, err := manager.SynthesizeSpeech(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			outcome := manager.PlayAndDispose(artifact)
			logger.Info("playback finished", "outcome", outcome)
			fmt.Fprintln(cmd.OutOrStdout(), outcome)
			return nil
		},
	}
}
