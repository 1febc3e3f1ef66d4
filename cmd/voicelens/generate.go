package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/voicelens/voicelens/internal/engine"
	"github.com/voicelens/voicelens/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a voice profile for a brand",
	Long:  "Collects website text and writing samples, runs them through the configured model adapter, and stores the result as the brand's next profile version. Identical inputs return the existing version.",
	RunE:  runGenerate,
}

var (
	generateBrandID     string
	generateBrandName   string
	generateURLs        []string
	generateSamples     []string
	generateSampleFiles []string
	generateOutputFile  string
)

func init() {
	generateCmd.Flags().StringVar(&generateBrandID, "brand", "", "Brand UUID (required unless --brand-name creates one)")
	generateCmd.Flags().StringVar(&generateBrandName, "brand-name", "", "Create a brand with this name and generate for it")
	generateCmd.Flags().StringArrayVarP(&generateURLs, "url", "u", nil, "Brand page URL (repeatable)")
	generateCmd.Flags().StringArrayVarP(&generateSamples, "sample", "s", nil, "Writing sample text (repeatable)")
	generateCmd.Flags().StringArrayVar(&generateSampleFiles, "sample-file", nil, "Path to a writing sample file (repeatable)")
	generateCmd.Flags().StringVarP(&generateOutputFile, "out", "o", "", "Write the profile JSON to a file instead of stdout")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	samples := append([]string{}, generateSamples...)
	for _, path := range generateSampleFiles {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read sample file: %w", err)
		}
		samples = append(samples, string(content))
	}

	ctx := context.Background()
	database, err := openDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	var brandID uuid.UUID
	switch {
	case generateBrandName != "":
		siteURL := ""
		if len(generateURLs) > 0 {
			siteURL = generateURLs[0]
		}
		brand, err := database.CreateBrand(ctx, generateBrandName, siteURL)
		if err != nil {
			return fmt.Errorf("failed to create brand: %w", err)
		}
		brandID = brand.ID
		fmt.Fprintf(os.Stderr, "Created brand %s (%s)\n", brand.Name, brand.ID)
	case generateBrandID != "":
		brandID, err = uuid.Parse(generateBrandID)
		if err != nil {
			return fmt.Errorf("invalid brand ID: %w", err)
		}
	default:
		return fmt.Errorf("either --brand or --brand-name is required")
	}

	events := newEventLogger()
	port, cleanup, err := buildPort(ctx, cfg, events)
	if err != nil {
		return fmt.Errorf("failed to build model adapter: %w", err)
	}
	defer cleanup()

	eng := engine.NewVoiceProfileEngine(port, database, database, nil, events)
	profile, err := eng.Generate(ctx, brandID, types.GenerateInputs{
		URLs:           generateURLs,
		WritingSamples: samples,
	}, cfg.Model)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	return writeJSON(profile, generateOutputFile)
}

// writeJSON renders v indented to path, or stdout when path is empty.
func writeJSON(v any, path string) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if path == "" {
		fmt.Println(string(jsonBytes))
		return nil
	}
	if err := os.WriteFile(path, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Output: %s\n", path)
	return nil
}
