/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tieubaoca/docqa-be/utils"
)

// batchAskCmd represents the batch-ask command
var batchAskCmd = &cobra.Command{
	Use:   "batch-ask",
	Short: "Ask the same question about every file in a directory",
	Long: `Runs ask for every .pdf, .txt and .csv file directly inside --directory.
A failing file is logged and skipped.`,
	Run: func(cmd *cobra.Command, args []string) {
		directory, _ := cmd.Flags().GetString("directory")
		query, _ := cmd.Flags().GetString("query")
		persist, _ := cmd.Flags().GetBool("persist")

		cfg, err := loadConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load config")
		}
		ctx := context.Background()
		documentService, mongoClient, err := buildDocumentService(ctx, cfg, persist)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize services")
		}
		if mongoClient != nil {
			defer mongoClient.Disconnect(context.Background())
		}

		files, err := os.ReadDir(directory)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read directory")
		}
		failed := 0
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			filePath := filepath.Join(directory, file.Name())
			if _, ok := utils.ContentTypeFromPath(filePath); !ok {
				log.Debug().Str("file", filePath).Msg("Skipping unsupported file")
				continue
			}
			answer, err := ask(ctx, documentService, filePath, query, persist)
			if err != nil {
				failed++
				log.Error().Err(err).Str("file", filePath).Msg("Failed to answer")
				continue
			}
			fmt.Printf("%s: %s\n", file.Name(), formatAnswer(answer))
		}
		if failed > 0 {
			log.Warn().Int("failed", failed).Msg("Some files could not be processed")
		}
	},
}

func init() {
	rootCmd.AddCommand(batchAskCmd)

	batchAskCmd.Flags().StringP("directory", "d", "", "Directory containing the files")
	batchAskCmd.Flags().StringP("query", "q", "", "Question to ask about each file")
	batchAskCmd.Flags().BoolP("persist", "p", false, "Store every file and answer in MongoDB")
	batchAskCmd.MarkFlagRequired("directory")
	batchAskCmd.MarkFlagRequired("query")
}
