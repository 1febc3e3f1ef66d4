package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/voicelens/voicelens/internal/engine"
	"github.com/voicelens/voicelens/internal/types"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score text against a brand's voice profile",
	Long:  "Evaluates a piece of text against a stored voice profile and reports per-metric scores with improvement suggestions.",
	RunE:  runEvaluate,
}

var (
	evaluateBrandID    string
	evaluateVersion    int
	evaluateText       string
	evaluateTextFile   string
	evaluateOutputFile string
)

func init() {
	evaluateCmd.Flags().StringVar(&evaluateBrandID, "brand", "", "Brand UUID (required)")
	evaluateCmd.Flags().IntVar(&evaluateVersion, "version", 0, "Profile version to evaluate against (default: latest)")
	evaluateCmd.Flags().StringVarP(&evaluateText, "text", "t", "", "Text to evaluate")
	evaluateCmd.Flags().StringVarP(&evaluateTextFile, "file", "f", "", "Path to a file with the text to evaluate")
	evaluateCmd.Flags().StringVarP(&evaluateOutputFile, "out", "o", "", "Write the evaluation JSON to a file instead of stdout")

	if err := evaluateCmd.MarkFlagRequired("brand"); err != nil {
		panic(fmt.Sprintf("failed to mark brand flag as required: %v", err))
	}

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	brandID, err := uuid.Parse(evaluateBrandID)
	if err != nil {
		return fmt.Errorf("invalid brand ID: %w", err)
	}

	text := evaluateText
	if evaluateTextFile != "" {
		if text != "" {
			return fmt.Errorf("--text and --file are mutually exclusive")
		}
		content, err := os.ReadFile(evaluateTextFile)
		if err != nil {
			return fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(content)
	}
	if text == "" {
		return fmt.Errorf("either --text or --file is required")
	}

	ctx := context.Background()
	database, err := openDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	events := newEventLogger()
	port, cleanup, err := buildPort(ctx, cfg, events)
	if err != nil {
		return fmt.Errorf("failed to build model adapter: %w", err)
	}
	defer cleanup()

	profiles := engine.NewVoiceProfileEngine(port, database, database, nil, events)
	var profile *types.VoiceProfile
	if evaluateVersion > 0 {
		profile, err = profiles.ByVersion(ctx, brandID, evaluateVersion)
	} else {
		profile, err = profiles.Latest(ctx, brandID)
	}
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	eval, err := engine.NewEvaluationEngine(port, database, events).Evaluate(ctx, profile, text)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	return writeJSON(eval, evaluateOutputFile)
}
