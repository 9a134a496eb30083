package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/careermate/internal/bot"
	"github.com/spigell/careermate/internal/chat"
	"github.com/spigell/careermate/internal/chat/discord"
	"github.com/spigell/careermate/internal/commands"
	"github.com/spigell/careermate/internal/extract"
	"github.com/spigell/careermate/internal/intake"
	logs "github.com/spigell/careermate/internal/logger"
	"github.com/spigell/careermate/internal/onboarding"
	"github.com/spigell/careermate/internal/secrets"
	"github.com/spigell/careermate/internal/session"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Connect to Discord and serve the community",
	Run: func(_ *cobra.Command, _ []string) {
		runBot()
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func runBot() {
	logger, config := setup("bot")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	token, err := secrets.Load(secrets.Source{
		Name:  "discord token",
		Value: config.Discord.Token,
		File:  config.Discord.TokenFile,
		Env:   "DISCORD_TOKEN",
	})
	if err != nil {
		logger.Fatal("resolving discord token", zap.Error(err))
	}

	store, err := openContacts(config.Contacts, logger)
	if err != nil {
		logger.Fatal("opening contacts", zap.Error(err))
	}
	defer store.Close()

	llm, err := newAssistant(ctx, config.AI, "", logger)
	if err != nil {
		logger.Fatal("building ai assistant", zap.Error(err))
	}
	aiLogger := logs.WithCommonFields(logger, config.AI.Provider, llm.Model())

	platform, err := discord.New(token, logger.Named("discord"))
	if err != nil {
		logger.Fatal("creating discord client", zap.Error(err))
	}

	waiter := chat.NewWaiter()
	state := session.New()
	extractor := extract.New(llm)

	conversations := intake.New(platform, waiter, llm, extractor, config.Intake, aiLogger.Named("intake"))
	joins := onboarding.New(platform, store, state, conversations.StartForMember, config.Onboarding, logger.Named("onboarding"))

	registry := commands.Default(config.Commands)
	for _, st := range registry.Describe() {
		if !st.Enabled {
			logger.Info("command disabled", zap.String("command", st.Name), zap.String("reason", st.Reason))
		}
	}

	handler := bot.New(bot.Options{
		Platform:   platform,
		Waiter:     waiter,
		State:      state,
		Onboarding: joins,
		Intake:     conversations,
		Registry:   registry,
		Commands: commands.Deps{
			Platform:  platform,
			Store:     store,
			LLM:       llm,
			Extractor: extractor,
			Resumes:   state.Resumes,
			Logger:    aiLogger.Named("commands"),
			Config:    config.Commands,
		},
		Logger: logger,
	})

	if err := platform.Run(ctx, handler); err != nil {
		logger.Fatal("running discord bot", zap.Error(err))
	}

	state.Reset()
	logger.Info("bot stopped")
}
