package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/veritas-health/medresearch/config"
	"github.com/veritas-health/medresearch/internal/ingest"
	"github.com/veritas-health/medresearch/internal/research"
	"github.com/veritas-health/medresearch/internal/vectorstore"
	"github.com/veritas-health/medresearch/provider"
	"github.com/veritas-health/medresearch/tools/embedding"
)

func ingestCMD() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Embed and index a document into the vector store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if cfg.LLM.APIKey == "" {
				return fmt.Errorf("llm.api_key is required for ingestion (embeddings)")
			}

			llm, err := provider.NewProvider(provider.Client(cfg.LLM.Provider), provider.Options{
				APIKey:             cfg.LLM.APIKey,
				CompletionModel:    cfg.LLM.CompletionModel,
				EmbeddingModel:     cfg.LLM.EmbeddingModel,
				EmbeddingDimension: cfg.Qdrant.Dimension,
				Timeout:            cfg.LLM.Timeout,
			})
			if err != nil {
				return err
			}
			embedder, err := embedding.NewEmbedding(llm, 1, cfg.Qdrant.Dimension)
			if err != nil {
				return err
			}
			defer embedder.Release()

			store := vectorstore.NewClient(vectorstore.Config{
				URL:     cfg.Qdrant.URL,
				APIKey:  cfg.Qdrant.APIKey,
				Timeout: cfg.Qdrant.Timeout,
			})

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := store.EnsureCollection(ctx, research.DocumentCollection, cfg.Qdrant.Dimension); err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			pipeline := ingest.NewPipeline(embedder, store, cfg.Uploads.Dir)
			documentID, err := pipeline.Ingest(ctx, filepath.Base(args[0]), data)
			if err != nil {
				return err
			}
			fmt.Printf("indexed %s as document %s\n", args[0], documentID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config/config.json)")
	return cmd
}
