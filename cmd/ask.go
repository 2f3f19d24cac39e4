/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tieubaoca/docqa-be/service"
	"github.com/tieubaoca/docqa-be/types"
	"github.com/tieubaoca/docqa-be/utils"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question about a local file",
	Long: `Runs the same pipeline as the HTTP endpoints on a local .pdf, .txt or
.csv file and prints the answer. With --persist the file and the answer are
also stored in MongoDB.`,
	Run: func(cmd *cobra.Command, args []string) {
		filePath, _ := cmd.Flags().GetString("file")
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

		answer, err := ask(ctx, documentService, filePath, query, persist)
		if err != nil {
			log.Fatal().Err(err).Str("file", filePath).Msg("Failed to answer")
		}
		fmt.Println(formatAnswer(answer))
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringP("file", "f", "", "Path to a .pdf, .txt or .csv file")
	askCmd.Flags().StringP("query", "q", "", "Question to ask about the file")
	askCmd.Flags().BoolP("persist", "p", false, "Store the file and the answer in MongoDB")
	askCmd.MarkFlagRequired("file")
	askCmd.MarkFlagRequired("query")
}

func ask(ctx context.Context, documentService *service.DocumentService, filePath, query string, persist bool) (*string, error) {
	upload, f, err := utils.OpenLocalFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	kind, _ := types.KindForContentType(upload.ContentType)
	if persist {
		return documentService.Predict(ctx, kind, upload, query)
	}
	return documentService.Answer(ctx, kind, upload, query)
}

func formatAnswer(answer *string) string {
	if answer == nil {
		return "(no answer: the document has no extractable text)"
	}
	return *answer
}
