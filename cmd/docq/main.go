package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"docq-cli/internal/client"
	"docq-cli/internal/config"
	"docq-cli/internal/render"
	"docq-cli/internal/version"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "docq [message]",
		Short:         "docq - streaming transcript client for the document agent",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}

			logger := buildLogger(cfg.Verbose)
			defer func() { _ = logger.Sync() }()

			// The log file never joins the live repaint path: it gets
			// its own non-live sink so repaint escapes stay out of it.
			var sink render.Sink = render.NewStdoutSink(os.Stdout, cfg.Live)
			var logFile *os.File
			if cfg.LogFile != "" {
				logPath := cfg.LogFile
				if !filepath.IsAbs(logPath) {
					cwd, _ := os.Getwd()
					logPath = filepath.Join(cwd, logPath)
				}
				file, err := os.Create(logPath)
				if err != nil {
					return err
				}
				logFile = file
				sink = render.NewMultiSink(
					render.NewStdoutSink(os.Stdout, cfg.Live),
					render.NewStdoutSink(logFile, false),
				)
			}

			sessionID := cfg.Session
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			transport := client.NewTransport(cfg.ServerURL, cfg.RetryMax)
			controller := client.NewController(transport, sink, render.Identity, logger, cfg.CollapseLimit)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			send := func(message string) error {
				runCtx, cancelRun := context.WithTimeout(ctx, cfg.Timeout)
				defer cancelRun()
				err := controller.Send(runCtx, sessionID, message)
				_ = sink.Close()
				return err
			}

			defer func() {
				if logFile != nil {
					_ = logFile.Close()
				}
			}()

			if len(args) > 0 {
				return send(strings.Join(args, " "))
			}

			scanner := bufio.NewScanner(os.Stdin)
			for {
				if !cfg.Quiet {
					fmt.Fprint(os.Stderr, "you> ")
				}
				if !scanner.Scan() {
					return scanner.Err()
				}
				message := strings.TrimSpace(scanner.Text())
				if message == "" {
					continue
				}
				if message == "exit" || message == "quit" {
					return nil
				}
				if err := send(message); err != nil {
					logger.Error("send failed", zap.Error(err))
				}
				if ctx.Err() != nil {
					return nil
				}
			}
		},
	}

	cmd.Flags().String("server", config.DefaultServerURL, "Agent backend base URL")
	cmd.Flags().String("timeout", config.DefaultTimeout.String(), "Per-message timeout (e.g. 120s)")
	cmd.Flags().Int("retry-max", config.DefaultRetryMax, "Retries before the stream opens")
	cmd.Flags().Int("collapse-limit", config.DefaultCollapseLimit, "Tool output length before collapsing")
	cmd.Flags().String("session", "", "Session identifier (random if empty)")
	cmd.Flags().Bool("live", true, "Repaint the transcript on every event")
	cmd.Flags().Bool("quiet", false, "Only print the final transcript")
	cmd.Flags().Bool("verbose", false, "Enable verbose logging")
	cmd.Flags().String("log-file", "", "Also write transcripts to a file")

	return cmd
}

func buildLogger(verbose bool) *zap.Logger {
	if verbose {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}
