// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command orchestrator-client fetches tasks from and submits results to a
// prover orchestrator.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/luxfi/orchestrator"
	"github.com/luxfi/orchestrator/internal/config"
	"github.com/luxfi/orchestrator/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type app struct {
	v       *viper.Viper
	cfgPath string

	cfg    *config.Config
	logger *zap.Logger
	client *orchestrator.Client
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "orchestrator-client",
		Short:         "Talk to the prover task orchestrator",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.cfgPath, "config", "", "config file (yaml, toml or json)")
	f.String("env", "", "orchestrator environment: local, dev, staging, beta")
	f.String("base-url", "", "orchestrator base URL, overrides --env")
	f.Int("attempts", 0, "concurrent attempts per call")
	f.Duration("attempt-timeout", 0, "deadline for each attempt")
	f.String("codec", "", "envelope codec: "+fmt.Sprint(orchestrator.AvailableCodecs()))
	f.String("transport", "", "transport: "+fmt.Sprint(orchestrator.AvailableTransports()))
	f.String("debug-dir", "", "write every outgoing payload to this directory")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address")
	f.String("log-level", "", "debug, info, warn, error")

	for key, flag := range map[string]string{
		"environment":     "env",
		"base_url":        "base-url",
		"attempts":        "attempts",
		"attempt_timeout": "attempt-timeout",
		"codec":           "codec",
		"transport":       "transport",
		"debug_dir":       "debug-dir",
		"metrics_addr":    "metrics-addr",
		"log.level":       "log-level",
	} {
		_ = a.v.BindPFlag(key, f.Lookup(flag))
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return a.setup(cmd.Context())
	}
	root.PersistentPostRun = func(*cobra.Command, []string) {
		a.teardown()
	}

	root.AddCommand(a.fetchCmd(), a.submitCmd(), envsCmd())
	return root
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.v, a.cfgPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.logger = logger

	codec, err := orchestrator.CodecByName(cfg.Codec)
	if err != nil {
		return err
	}

	opts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithCodec(codec),
		orchestrator.WithTransport(cfg.Transport),
		orchestrator.WithAttempts(cfg.Attempts),
		orchestrator.WithAttemptTimeout(cfg.AttemptTimeout),
		orchestrator.WithTelemetrySource(orchestrator.SystemTelemetry{Location: cfg.Location}),
	}

	if cfg.DebugDir != "" {
		sink, err := orchestrator.NewFileSink(cfg.DebugDir)
		if err != nil {
			return err
		}
		opts = append(opts, orchestrator.WithDebugSink(sink))
	}

	if cfg.MetricsAddr != "" {
		metrics, err := orchestrator.NewMetrics(prometheus.DefaultRegisterer)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		opts = append(opts, orchestrator.WithMetrics(metrics))
		a.serveMetrics(ctx, cfg.MetricsAddr)
	}

	a.client, err = orchestrator.New(cfg.OrchestratorURL(), opts...)
	return err
}

func (a *app) serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
}

func (a *app) teardown() {
	if a.client != nil {
		_ = a.client.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) fetchCmd() *cobra.Command {
	var nodeID string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the next task for a node",
		RunE: func(cmd *cobra.Command, _ []string) error {
			task, err := a.client.FetchTask(cmd.Context(), nodeID)
			if err != nil {
				return err
			}
			a.logger.Info("task received",
				zap.String("task_id", task.TaskID),
				zap.String("program_id", task.ProgramID),
				zap.Int("public_inputs_bytes", len(task.PublicInputs)),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "task_id=%s program_id=%s public_inputs=%s\n",
				task.TaskID, task.ProgramID, hex.EncodeToString(task.PublicInputs))
			return nil
		},
	}
	cmd.Flags().StringVar(&nodeID, "node-id", "", "node identifier")
	_ = cmd.MarkFlagRequired("node-id")
	return cmd
}

func (a *app) submitCmd() *cobra.Command {
	var nodeID, resultFile, resultHash string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a result (proof) for a node",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var result []byte
			if resultFile != "" {
				b, err := os.ReadFile(resultFile)
				if err != nil {
					return err
				}
				result = b
			}
			if resultHash == "" {
				sum := sha256.Sum256(result)
				resultHash = hex.EncodeToString(sum[:])
			}
			if err := a.client.SubmitResult(cmd.Context(), nodeID, resultHash, result); err != nil {
				return err
			}
			a.logger.Info("result submitted",
				zap.String("node_id", nodeID),
				zap.String("result_hash", resultHash),
				zap.Int("result_bytes", len(result)),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&nodeID, "node-id", "", "node identifier")
	cmd.Flags().StringVar(&resultFile, "result", "", "file holding the result bytes")
	cmd.Flags().StringVar(&resultHash, "hash", "", "result hash (default: sha256 of the result)")
	_ = cmd.MarkFlagRequired("node-id")
	return cmd
}

func envsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "envs",
		Short: "List known orchestrator environments",
		// no client needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		PersistentPostRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, _ []string) {
			for _, env := range orchestrator.Environments() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", env, env.OrchestratorURL())
			}
		},
	}
}
