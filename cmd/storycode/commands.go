package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openitup/storycode/internal/completion"
	"github.com/openitup/storycode/internal/config"
	"github.com/openitup/storycode/internal/engine"
	"github.com/openitup/storycode/internal/extractors"
	"github.com/openitup/storycode/internal/extractors/goextractor"
	"github.com/openitup/storycode/internal/extractors/pyextractor"
	"github.com/openitup/storycode/internal/extractors/tsextractor"
	"github.com/openitup/storycode/internal/httpapi"
	httpH "github.com/openitup/storycode/internal/httpapi/handlers"
	"github.com/openitup/storycode/internal/logger"
	"github.com/openitup/storycode/internal/prompts"
	"github.com/openitup/storycode/internal/server"
)

const (
	defaultConfigPath = "storycode.yaml"
	configFlagName    = "config"
	languageFlagName  = "language"
	paramFlagName     = "param"
)

// extractorFactories lists the built-in extractors in registration order.
var extractorFactories = []struct {
	name string
	new  func() extractors.Extractor
}{
	{"python", func() extractors.Extractor { return pyextractor.New() }},
	{"typescript", func() extractors.Extractor { return tsextractor.New() }},
	{"tsx", func() extractors.Extractor { return tsextractor.NewTSX() }},
	{"go", func() extractors.Extractor { return goextractor.New() }},
}

// app is everything a subcommand needs, built from the config file.
type app struct {
	cfg *config.Config
	log *logger.Logger
	eng *engine.Engine
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:   "storycode",
		Short: "Turn code into stories, jokes, diagrams and more with a local model",
		Long: `storycode extracts the structure of a code snippet, asks a text completion
service (Ollama by default) to do something playful or useful with it, and
normalizes the reply into plain text, a JSON object, an SVG image or a Mermaid
flowchart.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, configFlagName, defaultConfigPath, "path to the YAML config file")

	setup := func(cmd *cobra.Command) (*app, error) {
		return newApp(cfgPath, cmd.Flags().Changed(configFlagName))
	}

	root.AddCommand(
		newServeCmd(setup),
		newMCPCmd(setup),
		newAnalyzeCmd(setup),
		newRunCmd(setup),
		newFeaturesCmd(),
	)
	return root
}

func newApp(cfgPath string, explicit bool) (*app, error) {
	if _, err := os.Stat(cfgPath); err != nil && !explicit {
		cfgPath = ""
	}
	cfg, err := config.LoadWithEnv(cfgPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	var client completion.Client
	switch cfg.Completion.Backend {
	case "fake":
		client = completion.NewFakeClient("Once upon a time, a fake model told a very short story.")
	default:
		client = completion.NewOllamaClient(completion.OllamaConfig{
			URL:     cfg.Completion.URL,
			Model:   cfg.Completion.Model,
			Timeout: cfg.Completion.Timeout,
		})
	}
	client = completion.Wrap(client, completion.WithLogging(log))

	eng, err := engine.New(cfg, client, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	for _, f := range extractorFactories {
		if cfg.IsExtractorEnabled(f.name) {
			eng.RegisterExtractor(f.new())
		}
	}
	if len(eng.Languages()) == 0 {
		return nil, fmt.Errorf("no known extractor enabled in %v", cfg.Extractor.Enabled)
	}
	return &app{cfg: cfg, log: log, eng: eng}, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newServeCmd(setup func(*cobra.Command) (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			srv := httpapi.NewServer(a.cfg.HTTP.Addr, httpapi.RouterConfig{
				AllowedOrigins: a.cfg.HTTP.AllowedOrigins,
				Logger:         a.log,
				HealthHandler:  httpH.NewHealthHandler(),
				StoryHandler:   httpH.NewStoryHandler(a.eng),
				FeatureHandler: httpH.NewFeatureHandler(a.eng),
			})
			a.log.Info("HTTP server listening", "addr", a.cfg.HTTP.Addr, "model", a.cfg.Completion.Model, "languages", a.eng.Languages())
			return srv.Run(ctx)
		},
	}
}

func newMCPCmd(setup func(*cobra.Command) (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the features as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			srv, err := server.New(a.eng, a.log)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}
			return srv.Run(ctx)
		},
	}
}

func newAnalyzeCmd(setup func(*cobra.Command) (*app, error)) *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Print the structure of a code snippet as JSON (reads stdin without a file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			code, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			st, err := a.eng.Analyze(language, code)
			if err != nil {
				return errors.New(engine.DisplayError(err))
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		},
	}
	cmd.Flags().StringVarP(&language, languageFlagName, "l", "", "language of the snippet (default from config)")
	return cmd
}

func newRunCmd(setup func(*cobra.Command) (*app, error)) *cobra.Command {
	var (
		language string
		params   map[string]string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "run <feature> [file]",
		Short: "Run one feature on a file or stdin and print the normalized reply",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			var input string
			if prompts.Feature(args[0]) != prompts.FeatureCommitMessage || len(args) > 1 {
				if input, err = readInput(cmd.InOrStdin(), args[1:]); err != nil {
					return err
				}
			}

			res, err := a.eng.Run(cmd.Context(), engine.Request{
				Feature:  prompts.Feature(args[0]),
				Input:    input,
				Language: language,
				Params:   params,
			})
			if err != nil {
				return errors.New(engine.DisplayError(err))
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Output.Display())
			return err
		},
	}
	cmd.Flags().StringVarP(&language, languageFlagName, "l", "", "language of the code for the story feature")
	cmd.Flags().StringToStringVarP(&params, paramFlagName, "p", nil, "feature parameter, e.g. -p style=\"a space opera\"")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

func newFeaturesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "List the available features",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, f := range engine.Catalog() {
				if _, err := fmt.Fprintf(w, "%-16s %-8s %s\n", f.Name, f.Output, f.Description); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// readInput reads the named file, or stdin when no file (or "-") is given.
func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), nil
}
