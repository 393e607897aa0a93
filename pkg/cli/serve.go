package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/warrant/pkg/cli/config"
	controller "github.com/secmon-lab/warrant/pkg/controller/http"
	"github.com/secmon-lab/warrant/pkg/domain/model"
	"github.com/secmon-lab/warrant/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		oktaCfg      config.Okta
		slackCfg     config.Slack
		firestoreCfg config.Firestore
	)

	flags := joinFlags(
		serverCfg.Flags(),
		oktaCfg.Flags(),
		slackCfg.Flags(),
		firestoreCfg.Flags(),
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP hook server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting warrant hook server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("okta", oktaCfg),
				slog.Any("slack", slackCfg),
				slog.Any("firestore", firestoreCfg),
			)

			repo, err := firestoreCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			notifier := slackCfg.ConfigureOptional(logger)

			hooks := usecase.NewHooks(oktaCfg.Configure(), repo, notifier)

			// The framework may post hook requests without the token; the
			// server-held secret fills the gap.
			secrets := map[string]string{}
			if oktaCfg.HasToken() {
				secrets[model.SecretOktaAPIToken] = oktaCfg.APIToken
			}

			server := controller.NewServer(ctx, serverCfg.Addr, hooks, repo, secrets)

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown HTTP server")
			}
			return nil
		},
	}
}
