package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/careermate/internal/mailer"
	"github.com/spigell/careermate/internal/reminder"
	"github.com/spigell/careermate/internal/secrets"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Email invitees who have not joined the server yet",
	Run: func(cmd *cobra.Command, _ []string) {
		remind(cmd)
	},
}

func init() {
	remindCmd.Flags().Bool("dry-run", false, "only list the contacts that are due a reminder")
	remindCmd.Flags().BoolP("interactive", "i", false, "confirm before sending")

	rootCmd.AddCommand(remindCmd)
}

func remind(cmd *cobra.Command) {
	logger, config := setup("remind")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	interactive, _ := cmd.Flags().GetBool("interactive")

	if config.InviteLink == "" {
		logger.Fatal("invite-link is not configured")
	}

	tmpl, err := reminder.NewTemplate(config.Mail.Subject, config.Mail.Body)
	if err != nil {
		logger.Fatal("parsing reminder template", zap.Error(err))
	}

	store, err := openContacts(config.Contacts, logger)
	if err != nil {
		logger.Fatal("opening contacts", zap.Error(err))
	}
	defer store.Close()

	// A dry run never reaches Run, so it needs no SMTP credentials.
	var sender reminder.Sender
	if !dryRun {
		m, err := newMailer(config.Mail, logger)
		if err != nil {
			logger.Fatal("creating mailer", zap.Error(err))
		}
		sender = m
	}

	scheduler := reminder.New(store, sender, tmpl, config.InviteLink, logger.Named("reminder"))

	due, err := scheduler.Eligible(ctx)
	if err != nil {
		logger.Fatal("finding due contacts", zap.Error(err))
	}

	for _, c := range due {
		fmt.Printf("%s <%s> (%s, last sent %q)\n", c.Name, c.Email, c.Category, c.LastSent)
	}
	logger.Info("contacts due a reminder", zap.Int("count", len(due)))

	if dryRun || len(due) == 0 {
		return
	}

	if interactive {
		prompt := promptui.Select{
			Label: fmt.Sprintf("Send %d reminders?", len(due)),
			Items: []string{PromptYes, PromptNo},
		}
		_, answer, err := prompt.Run()
		if err != nil {
			logger.Fatal("prompt failed", zap.Error(err))
		}
		if answer != PromptYes {
			logger.Info("reminders cancelled")
			return
		}
	}

	result, err := scheduler.Run(ctx)
	if code := batchExitCode(logger, result, err); code != 0 {
		os.Exit(code)
	}
}

// batchExitCode logs the batch summary and returns a non-zero code whenever
// the run failed, including a failed save of the sent dates.
func batchExitCode(logger *zap.Logger, result *reminder.Result, err error) int {
	if result != nil {
		logger.Info("reminder batch finished",
			zap.Int("scanned", result.Scanned),
			zap.Int("eligible", result.Eligible),
			zap.Int("sent", result.Sent),
			zap.Int("failed", len(result.Failures)),
			zap.Bool("saved", result.Saved),
		)
	}
	if err != nil {
		logger.Error("reminder batch failed", zap.Error(err))
		return 1
	}
	return 0
}

func newMailer(cfg *MailConfig, logger *zap.Logger) (*mailer.Mailer, error) {
	password, err := secrets.Load(secrets.Source{
		Name:  "smtp password",
		Value: cfg.Password,
		File:  cfg.PasswordFile,
		Env:   "PASSWORD",
	})
	if err != nil {
		return nil, err
	}

	return mailer.New(mailer.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: password,
		From:     cfg.From,
	}, logger.Named("mailer"))
}
