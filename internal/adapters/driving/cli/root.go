// Package cli implements the ragchat command surface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/ragchat-cli/internal/chunker"
	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/services"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagReindex  bool
	flagNoChat   bool
	flagProvider string
	flagModel    string
	flagConfig   string
	flagDataDir  string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Chat with a local knowledge base",
	Long: `ragchat indexes the documents in your data folder and answers
questions about them using a local LLM.

Running ragchat without a subcommand performs an incremental indexing
pass and then starts an interactive chat session.`,
	SilenceUsage: true,
	RunE:         runRoot,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagProvider, "provider", "", "LLM provider: ollama, lmstudio or openai")
	pf.StringVar(&flagModel, "model", "", "LLM model name")
	pf.StringVar(&flagConfig, "config", "", "config file path (default ~/.ragchat/config.toml)")
	pf.StringVar(&flagDataDir, "data-dir", "", "folder with documents to index")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")

	rootCmd.Flags().BoolVar(&flagReindex, "reindex", false, "discard the index and reprocess everything")
	rootCmd.Flags().BoolVar(&flagNoChat, "no-chat", false, "index only, do not start the chat")
}

// app holds the wired application for one command invocation.
type app struct {
	cfg       *file.Config
	log       *logger.Logger
	store     *services.VectorStore
	indexer   *services.IndexerService
	assistant *services.AssistantService
	embedder  driven.EmbeddingService
	llm       driven.LLMService
	recStore  *sqlite.Store
}

// Close releases all resources held by the app.
func (a *app) Close() {
	if a.llm != nil {
		a.llm.Close()
	}
	if a.embedder != nil {
		a.embedder.Close()
	}
	if a.recStore != nil {
		a.recStore.Close()
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*file.Config, error) {
	path := flagConfig
	if path == "" {
		var err error
		path, err = file.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := file.Load(path)
	if err != nil {
		return nil, err
	}

	if flagProvider != "" {
		cfg.LLM.Provider = flagProvider
		cfg.Embedding.Provider = flagProvider
	}
	if flagModel != "" {
		cfg.LLM.Model = flagModel
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	return cfg, nil
}

// bootstrap wires the application. The embedding service is mandatory;
// when withLLM is set the generation endpoint is probed too, and a
// failure there degrades to index-only instead of aborting.
func bootstrap(ctx context.Context, withLLM bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(os.Stderr, flagVerbose)

	embedder, err := ai.CreateAndValidateEmbeddingService(cfg.EmbeddingSettings(), log)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, embedder: embedder}

	index, err := flat.New(embedder.Dimensions())
	if err != nil {
		a.Close()
		return nil, err
	}

	recStore, err := sqlite.NewStore(cfg.IndexDir)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open record store: %w", err)
	}
	a.recStore = recStore

	a.store = services.NewVectorStore(embedder, index, recStore, cfg.IndexDir, log)
	if err := a.store.Load(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("load index: %w", err)
	}

	c, err := chunker.New(
		chunker.WithChunkSize(cfg.Chunking.Size),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	processor := services.NewDocumentProcessor(c, log)
	a.indexer = services.NewIndexerService(processor, a.store, cfg.DataDir, log)

	if withLLM {
		llm, err := ai.CreateAndValidateLLMService(cfg.LLMSettings(), log)
		if err != nil {
			log.Warn("%v", err)
			log.Warn("continuing without chat")
		} else {
			a.llm = llm
		}
	}

	a.assistant = services.NewAssistantService(a.store, a.llm, cfg.Retrieval.TopK, driven.ChatOptions{
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}, log)

	return a, nil
}

func runRoot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx, !flagNoChat)
	if err != nil {
		return err
	}
	defer a.Close()

	if flagReindex {
		count, err := a.indexer.ForceReindexAll(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("Reindexed %d chunks from %s\n", count, a.cfg.DataDir)
	} else {
		report, err := a.indexer.RunIncremental(ctx)
		if err != nil {
			return err
		}
		printReport(cmd, report)
	}

	if flagNoChat || a.llm == nil {
		return nil
	}

	return runChat(ctx, cmd, a)
}

func printReport(cmd *cobra.Command, report domain.IndexReport) {
	cmd.Printf("Indexed: %d new, %d updated, %d unchanged\n",
		report.NewFiles, report.UpdatedFiles, report.UnchangedFiles)
}

// ignoreCancel maps context cancellation to a clean exit for commands
// that run until interrupted.
func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
