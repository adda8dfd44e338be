package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hopperhq/hopper/internal/configfile"
	"github.com/hopperhq/hopper/internal/storage/sqlite"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a hopper project in the current directory",
	Long: `Create a .hopper directory with a metadata file and an empty
database. Subsequent hop commands anywhere under this directory find
the project automatically.`,
	Run: func(cmd *cobra.Command, args []string) {
		prefix, _ := cmd.Flags().GetString("prefix")
		dbName, _ := cmd.Flags().GetString("db-name")

		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		dir := filepath.Join(cwd, configfile.HopperDirName)
		if existing, err := configfile.Load(dir); err == nil && existing != nil {
			fmt.Fprintf(os.Stderr, "Error: project already initialized at %s\n", dir)
			os.Exit(1)
		}
		if err := os.MkdirAll(dir, 0750); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", dir, err)
			os.Exit(1)
		}

		pc := configfile.DefaultConfig()
		if dbName != "" {
			pc.Database = dbName
		}
		if prefix != "" {
			pc.IDPrefix = prefix
		}
		if err := pc.Save(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		store, err := sqlite.New(rootCtx, pc.DatabasePath(dir))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating database: %v\n", err)
			os.Exit(1)
		}
		_ = store.Close()

		if !quietFlag {
			fmt.Printf("Initialized hopper project in %s\n", dir)
		}
	},
}

func init() {
	initCmd.Flags().String("prefix", "", "ID prefix for created items (default 'hop')")
	initCmd.Flags().String("db-name", "", "Database filename inside .hopper (default hopper.db)")
	rootCmd.AddCommand(initCmd)
}
