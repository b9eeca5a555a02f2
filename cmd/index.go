package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pacs-index-api/database"
	"pacs-index-api/fs"
	"pacs-index-api/indexer"
	"pacs-index-api/logging"
)

// indexCmd runs a one-shot foreground scan of the NAS share.
var indexCmd = &cobra.Command{
	Use:   "index [root]",
	Short: "scan a directory tree and rebuild the metadata index",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.NewLogger()

		root := viper.GetString("nas_path")
		if len(args) > 0 {
			root = args[0]
		}
		if root == "" {
			return errors.New("no scan root given and no nas_path configured")
		}

		dbPath := viper.GetString("db_path")
		if dbPath == "" {
			dbPath = fs.MetadataDBPath()
		}

		db, err := database.DBConn(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		ix := indexer.New(db, dbPath, logger)
		ix.Progress = func(processed int) {
			logger.WithField("processed", processed).Info("indexing progress")
		}

		return ix.Scan(root)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
