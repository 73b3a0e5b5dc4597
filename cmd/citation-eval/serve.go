// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-eval/internal/logging"
	"github.com/pdiddy/citation-eval/internal/server"
	"github.com/pdiddy/citation-eval/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the evaluation API over HTTP",
	Long: `Serve starts an HTTP server exposing evaluation and the run store:

  GET    /healthz
  POST   /api/v1/evaluate?split_attr=&split=&save=&name=
  GET    /api/v1/runs?limit=
  GET    /api/v1/runs/:id
  DELETE /api/v1/runs/:id

The server stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.Log.Level != logging.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(st, cfg.Evaluation, cfg.Serve).ListenAndServe(ctx, cfg.Serve.Addr)
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Int64("max-body-bytes", 32<<20, "largest dataset accepted by POST /api/v1/evaluate")
	bindFlag("serve.addr", serveCmd, "addr")
	bindFlag("serve.max_body_bytes", serveCmd, "max-body-bytes")

	rootCmd.AddCommand(serveCmd)
}
