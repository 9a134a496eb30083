package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/careermate/internal/ai"
	logs "github.com/spigell/careermate/internal/logger"
	"github.com/spigell/careermate/internal/scoring"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the resume scoring HTTP service",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides serve.addr)")

	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command) {
	logger, config := setup("serve")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := config.Serve.Addr
	if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
		addr = flagAddr
	}

	model := ""
	if config.AI.Provider == "" || config.AI.Provider == ai.ProviderOllama {
		model = config.AI.Ollama.ScoringModel
	}

	llm, err := newAssistant(ctx, config.AI, model, logger)
	if err != nil {
		logger.Fatal("building ai assistant", zap.Error(err))
	}

	scorer := scoring.NewScorer(llm, config.AI.MaxLogLength, logs.WithCommonFields(logger, config.AI.Provider, llm.Model()))
	server := scoring.NewServer(scorer, logger.Named("scoring"))

	logger.Info("scoring service listening", zap.String("addr", addr))
	if err := server.Listen(ctx, addr); err != nil {
		logger.Fatal("scoring service stopped", zap.Error(err))
	}
}
