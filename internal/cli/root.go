package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lazypower/reminderparrot/internal/config"
	"github.com/lazypower/reminderparrot/internal/engine"
	"github.com/lazypower/reminderparrot/internal/logging"
	"github.com/lazypower/reminderparrot/internal/store"
)

var (
	configPath string
	userID     string
	userName   string
)

var rootCmd = &cobra.Command{
	Use:   "parrot",
	Short: "A parrot that remembers your reminders, for a while",
	Long: "ReminderParrot keeps short reminders for as long as the parrot can remember them. " +
		"The parrot grows with use: higher levels hold more reminders for longer.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.reminderparrot/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "RemindNet user id")
	rootCmd.PersistentFlags().StringVar(&userName, "name", "", "RemindNet display name")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(rememberCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(forgetCmd)
	rootCmd.AddCommand(skillsCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(likeCmd)
	rootCmd.AddCommand(unshareCmd)
}

// loadConfig resolves the config file, then applies env overrides.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// openDB opens the database named by cfg, or the default one.
func openDB(cfg config.Config) (*store.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	return store.Open(dbPath)
}

// openEngine is the common setup for one-shot commands. Close the returned
// DB when done.
func openEngine() (*engine.Engine, *store.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	// one-shot commands only log problems
	if log.GetLevel() > logrus.WarnLevel {
		log.SetLevel(logrus.WarnLevel)
	}
	db, err := openDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	return engine.NewFromDB(db, cfg.EngineOptions(), log), db, nil
}

func currentUser() engine.User {
	return engine.User{ID: userID, Name: userName}
}
