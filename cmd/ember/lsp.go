package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ember/internal/analysis"
	"ember/internal/logging"
	"ember/internal/lsp"
	"ember/internal/version"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the ember language server over stdio",
	Args:  cobra.NoArgs,
	RunE:  runLSP,
}

func init() {
	lspCmd.Flags().String("log-level", "info", "log level (debug|info|warn|error)")
	lspCmd.Flags().String("log-file", "", "write logs to this file instead of stderr")
	lspCmd.Flags().String("cache-dir", "", "analysis cache directory (default $XDG_CACHE_HOME/ember)")
	lspCmd.Flags().Bool("no-cache", false, "disable the on-disk analysis cache")
	lspCmd.Flags().Int("jobs", 0, "max parallel workers for full analysis (0=auto)")
}

// runLSP performs the initialize handshake on stdio, runs a session over the
// reference analysis engine and waits for exit after a shutdown request.
func runLSP(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	logLevel, _ := flags.GetString("log-level")
	logFile, _ := flags.GetString("log-file")
	cacheDir, _ := flags.GetString("cache-dir")
	noCache, _ := flags.GetBool("no-cache")
	jobs, _ := flags.GetInt("jobs")

	logger, err := logging.New(logging.Options{Level: logLevel, File: logFile})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("session", uuid.NewString()))

	ctx := cmd.Context()
	conn := lsp.NewConn(os.Stdin, os.Stdout, logger)

	params, err := lsp.Initialize(ctx, conn, lsp.HandshakeOptions{
		ServerName:    "ember",
		ServerVersion: version.String(),
		Logger:        logger,
	})
	switch {
	case errors.Is(err, lsp.ErrExitWithoutShutdown):
		return &exitError{code: 1, msg: err.Error()}
	case errors.Is(err, io.EOF):
		logger.Info("client closed the connection before initialize")
		return nil
	case err != nil:
		return err
	}

	root := lsp.WorkspaceRoot(params)
	if root == "" {
		if root, err = os.Getwd(); err != nil {
			return fmt.Errorf("resolve workspace root: %w", err)
		}
	}
	logger.Info("workspace", zap.String("root", root))

	factory := analysis.Factory(analysis.Options{
		Root:     root,
		CacheDir: cacheDir,
		NoCache:  noCache,
		Jobs:     jobs,
		Logger:   logger.Named("analysis"),
	})
	session, err := lsp.NewSession(ctx, conn, params.Capabilities, factory, lsp.SessionOptions{Logger: logger})
	if err != nil {
		return err
	}
	if err := session.Run(ctx); err != nil {
		logger.Error("session failed", zap.Error(err))
		return err
	}
	if !session.ShutdownRequested() {
		return &exitError{code: 1, msg: "client disconnected without shutdown"}
	}
	return lsp.AwaitExit(ctx, conn, logger)
}
