package cmd

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ObiAU/newsfanout/internal/server"
	"github.com/ObiAU/newsfanout/internal/telegram"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when configured, the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)

	var bot *telegram.Bot
	if a.cfg.TelegramToken != "" {
		var err error
		bot, err = telegram.NewBot(a.cfg.TelegramToken, a.cfg.TelegramWebhookURL, a.service, a.digester, a.logger)
		if err != nil {
			return err
		}
	}

	var webhook http.Handler
	if bot != nil && bot.UsesWebhook() {
		webhook = bot
	}

	srv := server.New(a.service, server.Options{
		Port:           a.cfg.ServerPort,
		AllowedOrigins: a.cfg.AllowedOrigins,
		Digester:       a.digester,
		Webhook:        webhook,
		Logger:         a.logger,
	})

	a.logger.Info("starting news fan-out",
		"sources", len(a.cfg.Sources),
		"max_articles", a.cfg.MaxArticles,
		"telegram", bot != nil,
		"digest", a.digester != nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if bot != nil {
		g.Go(func() error {
			return bot.Run(gctx)
		})
	}

	err := g.Wait()
	a.logger.Info("news fan-out stopped")
	return err
}
