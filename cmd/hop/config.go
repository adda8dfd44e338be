package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hopperhq/hopper/internal/configfile"
)

// cfg is the process-wide viper instance. It layers, lowest priority
// first: built-in defaults, .hopper/config.yaml, HOP_* environment
// variables. Flags beat all of it (see applyViperOverrides).
var cfg = viper.New()

// projectCfg is the parsed .hopper/metadata.json, nil when no project
// has been initialized.
var projectCfg *configfile.Config

// hopperDir is the discovered .hopper directory, empty outside a project.
var hopperDir string

func initConfig() {
	cfg.SetDefault("import.create-missing-parents", true)
	cfg.SetDefault("import.concurrency", 4)

	cfg.SetEnvPrefix("HOP")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	cfg.AutomaticEnv()

	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	hopperDir = configfile.FindHopperDir(cwd)
	if hopperDir == "" {
		return
	}

	cfg.SetConfigType("yaml")
	cfg.SetConfigFile(filepath.Join(hopperDir, "config.yaml"))
	// A missing config.yaml is fine; metadata.json carries the project
	// settings.
	_ = cfg.ReadInConfig()

	pc, err := configfile.Load(hopperDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return
	}
	projectCfg = pc
}

// applyViperOverrides merges viper values into flags that weren't set on
// the command line. Priority: flags > env/config.yaml > metadata.json >
// defaults.
func applyViperOverrides(cmd *cobra.Command) {
	if !cmd.Flags().Changed("db") && dbPath == "" {
		dbPath = cfg.GetString("db")
	}
	if !cmd.Flags().Changed("json") && cfg.IsSet("json") {
		jsonOutput = cfg.GetBool("json")
	}
	if !cmd.Flags().Changed("verbose") && cfg.IsSet("verbose") {
		verboseFlag = cfg.GetBool("verbose")
	}
}

// resolveDBPath returns the database to operate on, or an error with a
// hint when no project is found.
func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if hopperDir != "" {
		if projectCfg != nil {
			return projectCfg.DatabasePath(hopperDir), nil
		}
		return filepath.Join(hopperDir, "hopper.db"), nil
	}
	return "", fmt.Errorf("no hopper project found (run 'hop init' or pass --db)")
}
