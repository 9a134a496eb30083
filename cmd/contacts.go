package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/careermate/internal/contacts"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Inspect and migrate the contact table",
}

var contactsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print joined and pending counts",
	Run: func(_ *cobra.Command, _ []string) {
		contactsStatus()
	},
}

var contactsImportCmd = &cobra.Command{
	Use:   "import <csv>",
	Short: "Copy a CSV contact table into a SQLite database",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		contactsImport(cmd, args[0])
	},
}

func init() {
	contactsImportCmd.Flags().String("to", "contacts.db", "destination SQLite database")

	contactsCmd.AddCommand(contactsStatusCmd, contactsImportCmd)
	rootCmd.AddCommand(contactsCmd)
}

func contactsStatus() {
	logger, config := setup("contacts status")
	ctx := context.Background()

	store, err := openContacts(config.Contacts, logger)
	if err != nil {
		logger.Fatal("opening contacts", zap.Error(err))
	}
	defer store.Close()

	list, err := store.Load(ctx)
	if err != nil {
		logger.Fatal("loading contacts", zap.Error(err))
	}

	counts := contacts.Count(list)
	fmt.Printf("total: %d\njoined: %d\npending: %d\n", counts.Total, counts.Joined, counts.Pending)
}

func contactsImport(cmd *cobra.Command, src string) {
	logger, _ := setup("contacts import")
	ctx := context.Background()

	dst, _ := cmd.Flags().GetString("to")

	from, err := contacts.NewCSV(src)
	if err != nil {
		logger.Fatal("opening csv contacts", zap.Error(err))
	}

	list, err := from.Load(ctx)
	if err != nil {
		logger.Fatal("loading csv contacts", zap.Error(err))
	}

	to, err := contacts.OpenSQLite(dst)
	if err != nil {
		logger.Fatal("opening sqlite contacts", zap.Error(err))
	}
	defer to.Close()

	if err := to.Save(ctx, list); err != nil {
		logger.Fatal("saving sqlite contacts", zap.Error(err))
	}

	logger.Info("contacts imported", zap.String("from", src), zap.String("to", dst), zap.Int("count", len(list)))
}
