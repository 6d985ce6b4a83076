package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/okatenko/prepflow/internal/ai"
	"github.com/okatenko/prepflow/internal/ai/gemini"
	"github.com/okatenko/prepflow/internal/ai/openai"
	"github.com/okatenko/prepflow/internal/engine"
	"github.com/okatenko/prepflow/internal/logger"
	"github.com/okatenko/prepflow/internal/secrets"
	"github.com/okatenko/prepflow/internal/voice"
)

const (
	PromptStart   = "Start the interview"
	PromptExit    = "Exit"
	PromptRestart = "Run another session"
	PromptReport  = "Show the full report as JSON"
)

var startPrompt = promptui.Select{
	Label: "Ready?",
	Items: []string{PromptStart, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive mock interview session",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("profile-file", "p", "", "file with raw profile or resume text")
	runCmd.Flags().StringP("target-role", "r", "", "role the candidate is interviewing for")
	runCmd.Flags().BoolP("auto-start", "y", false, "do not ask for confirmation before starting")

	viper.BindPFlag("profile-file", runCmd.Flags().Lookup("profile-file"))
	viper.BindPFlag("target-role", runCmd.Flags().Lookup("target-role"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting prepflow", zap.String("version", version))

	if config == nil {
		config = &Config{}
	}

	provider, err := newProvider(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building the content provider", zap.Error(err))
	}

	caller := ai.NewResilientCaller(provider, logger)

	// The terminal host has no audio hardware binding; the session runs in
	// text mode and the voice channel stays muted.
	in, out := voice.Muted()
	coordinator := voice.NewCoordinator(in, out, logger)

	eng := engine.New(caller, coordinator, logger)
	defer eng.Close()

	if err := loadProfile(ctx, eng, config, logger); err != nil {
		logger.Fatal("loading the profile", zap.Error(err))
	}

	if cmd.Flag("auto-start").Value.String() == "false" {
		_, action, err := startPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action == PromptExit {
			logger.Info("exiting", zap.String("reason", "declined at prompt"))
			return
		}
	}

	if err := eng.StartSession(ctx, nil, viper.GetString("target-role")); err != nil {
		logger.Fatal("starting the session", zap.Error(err))
	}

	runInterview(ctx, eng, logger)

	printReport(eng, logger)
}

// runInterview drives the question/answer loop until the session completes.
func runInterview(ctx context.Context, eng *engine.Engine, logger *zap.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	// The countdown runs in the background; when it hits zero the engine
	// auto-submits whatever draft has been captured so far.
	tickerCtx, stopTicker := context.WithCancel(ctx)
	defer stopTicker()
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-tickerCtx.Done():
				return
			case <-ticker.C:
				eng.Tick(ctx)
			}
		}
	}()

	for {
		snap := eng.Snapshot()
		if snap.Phase != engine.PhaseInterview {
			return
		}

		q := snap.CurrentQuestion
		fmt.Printf("\n[%d/%d] (%s) %s\n", snap.Cursor+1, snap.QuestionCount, q.Kind, q.Prompt)
		if snap.LastAcknowledgement != "" {
			fmt.Printf("  %s\n", snap.LastAcknowledgement)
		}
		fmt.Printf("Your answer (%ds window): ", snap.LiveMetrics.TimeRemaining)

		if !scanner.Scan() {
			logger.Info("input closed, finishing session early")
			return
		}
		answer := strings.TrimSpace(scanner.Text())

		// The window may have expired while the candidate was typing. The
		// engine has already advanced; the stale answer is dropped.
		if current := eng.Snapshot().CurrentQuestion; current == nil || q.ID != current.ID {
			logger.Info("answer window expired, moving on", zap.String("question_id", q.ID))
			continue
		}

		if err := eng.SubmitAnswer(ctx, answer); err != nil {
			if errors.Is(err, engine.ErrEmptyAnswer) {
				fmt.Println("Please give an answer.")
				continue
			}
			if errors.Is(err, engine.ErrNotInterviewing) {
				return
			}
			logger.Warn("submitting the answer", zap.Error(err))
			continue
		}

		metrics := eng.Snapshot().LiveMetrics
		fmt.Printf("  clarity %d / relevance %d / confidence %d (%.0f wpm)\n",
			metrics.Clarity, metrics.Relevance, metrics.Confidence, metrics.WordsPerMinute)
	}
}

func printReport(eng *engine.Engine, logger *zap.Logger) {
	snap := eng.Snapshot()
	if snap.Phase != engine.PhaseFeedback || snap.FinalReport == nil {
		logger.Info("exiting", zap.String("reason", "no completed session"))
		return
	}

	report := snap.FinalReport
	fmt.Printf("\nOverall score: %d%%\n", report.OverallScore)
	if report.InsufficientData {
		fmt.Println("Not enough answers were given to score this session.")
		return
	}

	for category, score := range report.CategoryScores {
		fmt.Printf("  %s: %d%%\n", category, score)
	}
	for _, step := range report.NextSteps {
		fmt.Printf("  next: %s\n", step)
	}

	finalPrompt := promptui.Select{
		Label: "Done",
		Items: []string{PromptReport, PromptExit},
	}

	_, action, err := finalPrompt.Run()
	if err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}

	if action == PromptReport {
		pretty, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(pretty))
	}
}

func loadProfile(ctx context.Context, eng *engine.Engine, config *Config, logger *zap.Logger) error {
	file := strings.TrimSpace(viper.GetString("profile-file"))
	if file == "" && config != nil {
		file = strings.TrimSpace(config.ProfileFile)
	}

	if file == "" {
		eng.SkipUpload()
		return nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading profile file: %w", err)
	}

	if err := eng.LoadProfileText(ctx, string(data)); err != nil {
		return err
	}

	logger.Info("profile loaded", zap.String("file", file))
	return nil
}

// newProvider picks the configured content provider. Without any AI
// configuration the deterministic offline provider keeps sessions usable.
func newProvider(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Provider, error) {
	if cfg == nil || strings.TrimSpace(cfg.Provider) == "" || strings.EqualFold(cfg.Provider, "offline") {
		log.Info("no content provider configured, running with deterministic content")
		return ai.NewOffline(), nil
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gemini":
		if cfg.Gemini == nil {
			return nil, fmt.Errorf("gemini configuration is required when the gemini provider is selected")
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: cfg.Gemini.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}

		genLogger := logger.WithCommonFields(log, "gemini", cfg.Gemini.Model)

		generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
		if err != nil {
			return nil, err
		}

		return ai.NewRemote(generator, genLogger, cfg.MaxLogLength), nil

	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai configuration is required when the openai provider is selected")
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "openai api key",
			File: cfg.OpenAI.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY_FILE)", err)
		}

		genLogger := logger.WithCommonFields(log, "openai", cfg.OpenAI.Model)

		generator, err := openai.NewGenerator(openai.Config{
			APIKey:     apiKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			Model:      cfg.OpenAI.Model,
			MaxRetries: cfg.OpenAI.MaxRetries,
		}, genLogger)
		if err != nil {
			return nil, err
		}

		return ai.NewRemote(generator, genLogger, cfg.MaxLogLength), nil

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}
