package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"quizvoice/config"
	"quizvoice/internal/application"
	"quizvoice/internal/infra/web"
)

func newServeCommand(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the quiz as a web session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}

			questions, err := config.LoadQuestions(cfg.Quiz.QuestionsFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ui := web.NewSessionUI()
			manager := buildManager(cfg, ui, logger)

			quiz, err := application.NewQuizSession(manager, ui, questions, logger)
			if err != nil {
				return fmt.Errorf("creating quiz: %w", err)
			}

			server := web.NewServer(web.Config{
				Addr:              cfg.Server.Addr,
				AuthToken:         cfg.Server.AuthToken,
				RateLimitRPS:      cfg.Server.RateLimitRPS,
				RateLimitBurst:    cfg.Server.RateLimitBurst,
				TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
			}, quiz, ui, manager, logger)

			if err := server.Start(ctx); err != nil {
				return fmt.Errorf("starting server: %w", err)
			}

			logger.Info("quiz ready",
				"questions", len(questions),
				"audio_source", cfg.Audio.Source,
			)

			<-ctx.Done()
			logger.Info("shutting down")
			return server.Stop()
		},
	}
}
