package cmd

import (
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/huangsam/flowstate/internal/api"
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/internal/logger"
	"github.com/huangsam/flowstate/internal/scheduler"
	"github.com/spf13/cobra"
)

// scheduledUsers lists every user reachable through the API plus the configured user.
func scheduledUsers() []string {
	users := []string{cfg.UserID}
	for _, u := range cfg.APITokens {
		if !slices.Contains(users, u) {
			users = append(users, u)
		}
	}
	slices.Sort(users)
	return slices.DeleteFunc(users, func(u string) bool { return u == "" })
}

// serveCmd runs the HTTP API and the optional sync scheduler.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the REST API and run scheduled syncs",
	Long: `Start an HTTP server exposing the report, sync and settings endpoints.

Requests authenticate with 'Authorization: Bearer <token>'; --api-tokens maps
tokens to users (format: 'token1=alice,token2=bob'). /api/health and
/api/demo-data need no token.

With --schedule (standard cron syntax) every known user is synced in the
background.

Examples:
  flowstate serve --listen :8080 --api-tokens "s3cret=alice"
  flowstate serve --schedule "0 6 * * 1-5" --log-format json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		log := logger.New(os.Stderr, cfg.LogFormat)

		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, metrics, err := newService(ctx)
		if err != nil {
			contract.LogFatal("Failed to set up server", err)
		}
		defer closeMetrics(ctx, metrics)

		if cfg.Schedule != "" {
			sched, err := scheduler.New(cfg.Schedule, cfg.Location, svc, scheduledUsers(), cfg.SyncTimeout, log)
			if err != nil {
				contract.LogFatal("Failed to set up scheduler", err)
			}
			sched.Start()
			defer sched.Stop()
		}

		router := api.NewRouter(svc, cfg.APITokens, log)
		if err := api.Serve(ctx, cfg.Listen, router, log); err != nil {
			log.Error().Err(err).Msg("http server failed")
		}
	},
}
