// Command weave manages a library of wiki-linked interactive fiction
// stories: importing and exporting archives, installing story formats,
// and repairing format references.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/storyweave/goweave/internal/actions"
	"github.com/storyweave/goweave/internal/store"
)

var rootCmd = &cobra.Command{
	Use:          "weave",
	Short:        "Story library manager for wiki-linked interactive fiction",
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .weave.yaml)")
	rootCmd.PersistentFlags().String("data", "weave.db", "path to the story library database")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	_ = viper.BindPFlag("data", rootCmd.PersistentFlags().Lookup("data"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".weave")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("WEAVE")
	viper.AutomaticEnv()

	// Missing config file is fine; flags and defaults cover everything.
	_ = viper.ReadInConfig()
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// openService opens the configured database and wires up the action layer.
// The caller owns the store and must close it.
func openService(cmd *cobra.Command) (*actions.Service, error) {
	log, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(viper.GetString("data"))
	if err != nil {
		return nil, fmt.Errorf("open story library: %w", err)
	}
	return actions.New(st, log, &actions.HTTPFetcher{}), nil
}

func storyByName(svc *actions.Service, name string) (*store.Story, error) {
	stories, err := svc.Store().Stories()
	if err != nil {
		return nil, err
	}
	for _, st := range stories {
		if st.Name == name {
			return st, nil
		}
	}
	return nil, fmt.Errorf("%w: story %q", store.ErrNotFound, name)
}
