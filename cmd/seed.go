package cmd

import (
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/junaidrashid-git/restaurant-api/config"
	"github.com/junaidrashid-git/restaurant-api/database"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load categories, menu, zones, tables, opening hours and an admin from YAML",
	Long: `Upserts reference data from a YAML file. Running it twice is harmless.

Example:
  restaurant-api seed --file seed.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if seedFile == "" {
			return errors.New("--file is required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		seed, err := config.LoadSeed(seedFile)
		if err != nil {
			return err
		}
		db, err := database.Open(cfg.Database)
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		if err := database.Seed(db, seed); err != nil {
			return err
		}
		log.WithField("file", seedFile).Info("seed data loaded")
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "seed.yaml", "Seed YAML file")
}
