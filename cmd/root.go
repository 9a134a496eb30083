package cmd

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/careermate/internal/commands"
	"github.com/spigell/careermate/internal/intake"
	"github.com/spigell/careermate/internal/logger"
	"github.com/spigell/careermate/internal/onboarding"
)

const (
	app = "careermate"
)

type Config struct {
	InviteLink string            `mapstructure:"invite-link"`
	Contacts   *ContactsConfig   `mapstructure:"contacts"`
	Discord    *DiscordConfig    `mapstructure:"discord"`
	Mail       *MailConfig       `mapstructure:"mail"`
	AI         *AIConfig         `mapstructure:"ai"`
	Serve      *ServeConfig      `mapstructure:"serve"`
	Onboarding onboarding.Config `mapstructure:"onboarding"`
	Intake     intake.Config     `mapstructure:"intake"`
	Commands   commands.Config   `mapstructure:"commands"`
}

type ContactsConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type DiscordConfig struct {
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"token-file"`
}

type MailConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	PasswordFile string `mapstructure:"password-file"`
	From         string `mapstructure:"from"`
	Subject      string `mapstructure:"subject"`
	Body         string `mapstructure:"body"`
}

type AIConfig struct {
	Provider     string        `mapstructure:"provider"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Ollama       *OllamaConfig `mapstructure:"ollama"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
}

type OllamaConfig struct {
	Host         string `mapstructure:"host"`
	Model        string `mapstructure:"model"`
	ScoringModel string `mapstructure:"scoring-model"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "careermate is a community bot that onboards members, helps them with careers and reminds invitees to join",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

var envBindings = map[string]string{
	"discord.token":     "DISCORD_TOKEN",
	"mail.username":     "EMAIL",
	"mail.password":     "PASSWORD",
	"ai.gemini.api-key": "GEMINI_API_KEY",
	"ai.ollama.host":    "OLLAMA_HOST",
	"contacts.path":     "CAREERMATE_CONTACTS",
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is careermate.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("contacts.backend", "csv")
	viper.SetDefault("contacts.path", "contacts.csv")

	viper.SetDefault("mail.host", "smtp.gmail.com")
	viper.SetDefault("mail.port", 587)

	viper.SetDefault("ai.provider", "ollama")
	viper.SetDefault("ai.max-log-length", 200)
	viper.SetDefault("ai.ollama.host", "http://localhost:11434")
	viper.SetDefault("ai.ollama.model", "llava:7b")
	viper.SetDefault("ai.ollama.scoring-model", "mistral")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")

	viper.SetDefault("serve.addr", ":5001")

	on := onboarding.DefaultConfig()
	viper.SetDefault("onboarding.server-name", on.ServerName)
	viper.SetDefault("onboarding.welcome-channels", on.WelcomeChannels)
	viper.SetDefault("onboarding.follow-up-delay", on.FollowUpDelay)

	in := intake.DefaultConfig()
	viper.SetDefault("intake.community-channel", in.CommunityChannel)
	viper.SetDefault("intake.volunteer-channel", in.VolunteerChannel)
	viper.SetDefault("intake.timeout", in.Timeout)
	viper.SetDefault("intake.resume-chars", in.ResumeChars)

	cmds := commands.DefaultConfig()
	viper.SetDefault("commands.prefix", cmds.Prefix)
	viper.SetDefault("commands.resume-channels", cmds.ResumeChannels)
	viper.SetDefault("commands.resume-dir", cmds.ResumeDir)
	viper.SetDefault("commands.temp-dir", cmds.TempDir)
	viper.SetDefault("commands.resume-chars", cmds.ResumeChars)
}

func initConfig() {
	// A missing .env is fine; the environment may already be populated.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicitly requested config must exist. Defaults and env cover the rest.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Contacts == nil {
		config.Contacts = &ContactsConfig{}
	}
	if config.Discord == nil {
		config.Discord = &DiscordConfig{}
	}
	if config.Mail == nil {
		config.Mail = &MailConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Ollama == nil {
		config.AI.Ollama = &OllamaConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Serve == nil {
		config.Serve = &ServeConfig{}
	}
	config.Commands.InviteLink = config.InviteLink
	config.Onboarding.CommandPrefix = config.Commands.Prefix

	return config, nil
}

// setup builds the logger and loads the config, exiting on failure.
func setup(command string) (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting "+app, zap.String("command", command), zap.String("version", version))
	return logger, config
}
