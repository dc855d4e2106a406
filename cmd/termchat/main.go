// Package main provides the termchat command: an interactive terminal chat with
// a language model that can call local tools and produce viewable artifacts.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Cyclone1070/termchat/internal/artifact"
	"github.com/Cyclone1070/termchat/internal/config"
	"github.com/Cyclone1070/termchat/internal/provider"
	"github.com/Cyclone1070/termchat/internal/provider/anthropic"
	"github.com/Cyclone1070/termchat/internal/provider/gemini"
	"github.com/Cyclone1070/termchat/internal/tool/calculator"
	"github.com/Cyclone1070/termchat/internal/tool/weather"
	"github.com/Cyclone1070/termchat/internal/ui"
	"github.com/Cyclone1070/termchat/internal/ui/models"
	uiservices "github.com/Cyclone1070/termchat/internal/ui/services"
	"github.com/Cyclone1070/termchat/internal/workflow/loop"
	"github.com/Cyclone1070/termchat/internal/workflow/toolmanager"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const inputPrompt = "Type a message..."

// ErrNotTerminal is returned when stdout cannot host the TUI.
var ErrNotTerminal = errors.New("termchat needs an interactive terminal on stdout")

// flags holds the command-line overrides.
type flags struct {
	apiKey        string
	provider      string
	model         string
	maxRoundTrips int
	logFile       string
	stream        bool
}

// artifactStore is the part of artifact.Store the session uses.
type artifactStore interface {
	Open(a artifact.Artifact) (artifact.Opened, error)
	Copy(a artifact.Artifact) error
	Close() error
}

// Dependencies holds the components required to run the application.
type Dependencies struct {
	Config          *config.Config
	UI              ui.UserInterface
	ProviderFactory func(context.Context) (provider.Provider, error)
	Store           artifactStore
	Logger          *slog.Logger
}

func main() {
	cmd := newRootCmd(os.Getenv)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "termchat",
		Short: "Chat with a language model in your terminal",
		Long: `termchat holds a multi-turn conversation with a language model.
The model can call local tools (calculator, weather) and produce artifacts
(HTML pages, React components, scripts) that open in your browser.

Keys:
  Enter        send message
  Tab          open the latest artifact
  Esc          cancel the running turn
  Ctrl+C       quit

Type /help inside the chat for commands.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if err := applyFlags(cfg, cmd, f); err != nil {
				return err
			}

			apiKey, err := resolveAPIKey(f.apiKey, cfg.Provider.Name, getenv)
			if err != nil {
				return err
			}

			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return ErrNotTerminal
			}

			logger, closeLog, err := setupLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer closeLog()

			store := artifact.NewStore(cfg.Artifacts.Dir, artifact.NewSystemOpener(), artifact.SystemClipboard{})
			defer func() {
				if err := store.Close(); err != nil {
					logger.Warn("failed to remove artifacts", "error", err)
				}
			}()

			deps := Dependencies{
				Config:          cfg,
				UI:              createRealUI(cfg),
				ProviderFactory: createProviderFactory(cfg, apiKey, logger),
				Store:           store,
				Logger:          logger,
			}

			// The UI owns its lifecycle via Ctrl+C / Quit
			return runInteractive(context.Background(), deps)
		},
	}

	cmd.Flags().StringVarP(&f.apiKey, "api-key", "k", "", "API key (defaults to ANTHROPIC_API_KEY or GEMINI_API_KEY)")
	cmd.Flags().StringVar(&f.provider, "provider", "", "Model provider: anthropic or gemini")
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Model to use (defaults to the provider's default)")
	cmd.Flags().IntVar(&f.maxRoundTrips, "max-round-trips", 0, "Maximum model requests per user message")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "Write JSON logs to this file")
	cmd.Flags().BoolVar(&f.stream, "stream", true, "Stream replies as they are generated")

	return cmd
}

// loadConfig reads the config file, falling back to defaults with a warning.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration.\n")
		cfg = config.DefaultConfig()
	}
	return cfg
}

// applyFlags overlays explicitly set flags on cfg and revalidates it.
func applyFlags(cfg *config.Config, cmd *cobra.Command, f flags) error {
	if f.provider != "" {
		cfg.Provider.Name = strings.ToLower(f.provider)
	}
	if f.model != "" {
		cfg.Provider.Model = f.model
	}
	if cmd.Flags().Changed("max-round-trips") {
		cfg.Workflow.MaxRoundTrips = f.maxRoundTrips
	}
	if f.logFile != "" {
		cfg.Log.Path = f.logFile
	}
	if cmd.Flags().Changed("stream") {
		cfg.Provider.Stream = f.stream
	}
	return cfg.Validate()
}

// resolveAPIKey prefers the flag, then the provider's environment variable.
func resolveAPIKey(flagKey, providerName string, getenv func(string) string) (string, error) {
	if flagKey != "" {
		return flagKey, nil
	}
	envVar := "ANTHROPIC_API_KEY"
	if providerName == config.ProviderGemini {
		envVar = "GEMINI_API_KEY"
	}
	if key := strings.TrimSpace(getenv(envVar)); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("API key required. Use --api-key or set %s", envVar)
}

// setupLogger returns a JSON logger writing to cfg.Path. The TUI owns the
// terminal, so without a path logs are discarded.
func setupLogger(cfg config.LogConfig) (*slog.Logger, func(), error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = f.Close() }, nil
}

func createRealUI(cfg *config.Config) ui.UserInterface {
	channels := ui.NewUIChannels()
	renderer := uiservices.NewGlamourRenderer(cfg.UI.MarkdownStyle)
	spinnerFactory := func() spinner.Model {
		return spinner.New(spinner.WithSpinner(spinner.Dot))
	}
	return ui.NewUI(cfg.UI, channels, renderer, spinnerFactory)
}

func createProviderFactory(cfg *config.Config, apiKey string, logger *slog.Logger) func(context.Context) (provider.Provider, error) {
	return func(ctx context.Context) (provider.Provider, error) {
		if cfg.Provider.Name == config.ProviderGemini {
			p, err := gemini.NewFromAPIKey(ctx, apiKey, logger)
			if err != nil {
				return nil, fmt.Errorf("failed to create Gemini client: %w", err)
			}
			return p, nil
		}

		p, err := anthropic.New(anthropic.Options{
			APIKey:     apiKey,
			BaseURL:    cfg.Provider.BaseURL,
			MaxRetries: cfg.Provider.MaxRetries,
			Timeout:    time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
			Stream:     cfg.Provider.Stream,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Anthropic client: %w", err)
		}
		return p, nil
	}
}

func createTools(cfg *config.Config, logger *slog.Logger) (*toolmanager.ToolManager, error) {
	var source weather.Source = weather.StaticSource{}
	if cfg.Tools.WeatherSource == config.WeatherSourceWttr {
		source = weather.NewWttrSource(
			cfg.Tools.WeatherEndpoint,
			nil,
			time.Duration(cfg.Tools.WeatherTimeoutSeconds)*time.Second,
		)
	}

	tm, err := toolmanager.NewToolManager(
		toolmanager.Options{
			Concurrency: cfg.Workflow.ToolConcurrency,
			Logger:      logger,
		},
		calculator.New(cfg.Tools.CalculatorMaxLength),
		weather.New(source),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	return tm, nil
}

func runInteractive(ctx context.Context, deps Dependencies) error {
	userInterface := deps.UI
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// Create cancellable context for goroutines
	appCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	// Session shared between goroutines once initialized
	var sess *session
	sessionReady := make(chan struct{})

	// Goroutine #1: Initialize & REPL
	wg.Add(1)
	go func() {
		defer wg.Done()

		<-userInterface.Ready()

		// === PROVIDER INITIALIZATION ===
		userInterface.WriteStatus(models.PhaseThinking, "Initializing AI...")

		p, err := deps.ProviderFactory(appCtx)
		if err != nil {
			userInterface.WriteStatus(models.PhaseError, "AI initialization failed")
			userInterface.WriteError(fmt.Sprintf("failed to initialize provider: %v", err))
			userInterface.WriteMessage("The application cannot start. Press Ctrl+C to exit.")
			return // UI keeps running so the error stays visible
		}

		tools, err := createTools(deps.Config, logger)
		if err != nil {
			userInterface.WriteStatus(models.PhaseError, "Initialization failed")
			userInterface.WriteError(err.Error())
			userInterface.WriteMessage("The application cannot start. Press Ctrl+C to exit.")
			return
		}

		model := deps.Config.Provider.Model
		if model == "" {
			model = p.DefaultModel()
		}
		userInterface.SetModel(model)

		engine := loop.NewLoop(p, tools, userInterface.Events(), loop.Config{
			Model:         model,
			System:        deps.Config.Provider.SystemPrompt,
			MaxTokens:     deps.Config.Provider.MaxTokens,
			MaxRoundTrips: deps.Config.Workflow.MaxRoundTrips,
		}, logger)

		sess = newSession(engine, userInterface, deps.Store, deps.Config.Artifacts.AutoOpen, logger)
		close(sessionReady)

		logger.Info("session started", "provider", p.Name(), "model", model)
		userInterface.WriteStatus(models.PhaseReady, "")

		// === REPL LOOP ===
		for {
			text, err := userInterface.ReadInput(appCtx, inputPrompt)
			if err != nil {
				return // UI closed or context cancelled
			}
			sess.send(appCtx, text)
		}
	}()

	// Goroutine #2: Command handler
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case <-appCtx.Done():
				return
			case cmd := <-userInterface.Commands():
				select {
				case <-sessionReady:
				default:
					userInterface.WriteError("not ready yet")
					continue
				}
				switch cmd.Type {
				case ui.CommandCancel:
					sess.cancelTurn()
				case ui.CommandRetry:
					// Retry runs like a submitted turn so Esc can still cancel it
					wg.Add(1)
					go func() {
						defer wg.Done()
						sess.retry(appCtx)
					}()
				case ui.CommandReset:
					sess.reset()
				case ui.CommandOpenArtifact:
					if cmd.Artifact != nil {
						sess.open(*cmd.Artifact)
					}
				case ui.CommandCopyArtifact:
					if cmd.Artifact != nil {
						sess.copy(*cmd.Artifact)
					}
				}
			}
		}
	}()

	// Run UI in main thread (blocks until exit)
	uiErr := userInterface.Start()

	// UI exited, trigger shutdown
	cancel()
	wg.Wait()

	if uiErr != nil {
		return fmt.Errorf("error running UI: %w", uiErr)
	}
	return nil
}
