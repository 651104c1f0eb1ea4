package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/skyviz/vizflow"
	"github.com/skyviz/vizflow/agent"
	s3store "github.com/skyviz/vizflow/artifact/s3"
	"github.com/skyviz/vizflow/config"
	"github.com/skyviz/vizflow/logging"
	"github.com/skyviz/vizflow/model"
	anthropicmodel "github.com/skyviz/vizflow/model/anthropic"
	openaimodel "github.com/skyviz/vizflow/model/openai"
)

type rootFlags struct {
	configPath string
	provider   string
	modelName  string
	iterations int
	mode       string
	depth      string
	logLevel   string
	logFormat  string
	bucket     string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "vizflow",
		Short:         "Chart generation for the low altitude economy dataset",
		Long:          "vizflow plans, generates, executes and scores chart code from natural-language queries.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	pf.StringVar(&flags.provider, "provider", "", "model provider: openai, anthropic or mock")
	pf.StringVar(&flags.modelName, "model", "", "provider model name override")
	pf.IntVar(&flags.iterations, "iterations", 0, "maximum reflection loop passes")
	pf.StringVar(&flags.mode, "mode", "", "generation mode: conservative, creative or adaptive")
	pf.StringVar(&flags.depth, "depth", "", "evaluation depth: full or simple")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format: pretty, text or json")
	pf.StringVar(&flags.bucket, "artifact-bucket", "", "S3 bucket for rendered charts")

	cmd.AddCommand(newAskCmd(flags))
	return cmd
}

// loadConfig merges, lowest priority first: defaults, .env, the config file,
// command-line flags.
func loadConfig(flags *rootFlags) (config.Config, error) {
	// best effort: a missing .env is the common case
	_ = godotenv.Load()

	cfg := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if flags.provider != "" {
		cfg.Provider = flags.provider
	}
	if flags.modelName != "" {
		cfg.Model = flags.modelName
	}
	if flags.iterations > 0 {
		cfg.MaxIterations = flags.iterations
	}
	if flags.mode != "" {
		cfg.Mode = flags.mode
	}
	if flags.depth != "" {
		cfg.Depth = flags.depth
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.LogFormat = flags.logFormat
	}
	if flags.bucket != "" {
		cfg.ArtifactBucket = flags.bucket
	}
	return cfg, cfg.Validate()
}

func buildModel(cfg config.Config) (model.Model, error) {
	switch cfg.Provider {
	case "openai":
		if os.Getenv("OPENAI_API_KEY") == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for the openai provider")
		}
		m := openaimodel.NewModel(func(o *openaimodel.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		})
		return model.WithRetry(m), nil
	case "anthropic":
		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is required for the anthropic provider")
		}
		m := anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if cfg.Model != "" {
				o.Model = anthropic.Model(cfg.Model)
			}
		})
		return model.WithRetry(m), nil
	case "mock":
		return model.NewMockModel("cli-mock"), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func buildOrchestrator(ctx context.Context, cfg config.Config, logger logging.Logger) (*vizflow.Orchestrator, error) {
	m, err := buildModel(cfg)
	if err != nil {
		return nil, err
	}

	optFns := []func(o *vizflow.Options){func(o *vizflow.Options) {
		o.Model = m
		o.MaxIterations = cfg.MaxIterations
		o.Mode = agent.GenerationMode(cfg.Mode)
		o.Depth = agent.Depth(cfg.Depth)
		o.TopK = cfg.TopK
		o.ExecBudget = cfg.ExecBudget.AsDuration()
		o.LLMTimeout = cfg.LLMTimeout.AsDuration()
		o.Logger = logger
	}}

	if cfg.ArtifactBucket != "" {
		store, err := s3store.NewStoreFromConfig(ctx, cfg.ArtifactBucket)
		if err != nil {
			return nil, fmt.Errorf("artifact store: %w", err)
		}
		optFns = append(optFns, func(o *vizflow.Options) { o.ArtifactStore = store })
	}

	return vizflow.New(optFns...), nil
}

func newAskCmd(flags *rootFlags) *cobra.Command {
	var outPath string
	var showTrace bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Run one query through the pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := logging.NewSlogLogger(
				logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, os.Stderr)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			o, err := buildOrchestrator(ctx, cfg, logger)
			if err != nil {
				return err
			}

			result, err := o.Process(ctx, args[0])
			if err != nil {
				return err
			}

			if result.Success && outPath != "" {
				if err := os.WriteFile(outPath, []byte(result.ChartHTML), 0o644); err != nil {
					return fmt.Errorf("write chart: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "chart written to %s\n", outPath)
			}

			summary := map[string]any{
				"invocation_id": result.InvocationID,
				"success":       result.Success,
				"iterations":    result.Iterations,
			}
			if result.Error != "" {
				summary["error"] = result.Error
			}
			if result.Execution != nil {
				summary["overall_score"] = result.Execution.OverallScore
			}
			if showTrace {
				summary["agent_trace"] = result.AgentTrace
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "chart.html", "file to write the rendered chart to")
	cmd.Flags().BoolVar(&showTrace, "trace", false, "include the agent trace in the output")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall request timeout")
	return cmd
}
