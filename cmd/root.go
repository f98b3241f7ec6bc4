package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var userIDFlag string
var configFileFlag string

var rootCmd = &cobra.Command{
	Use:   "facegroup",
	Short: "Administer the persistent face-grouping service",
	Long: `facegroup is a CLI for operating the face-grouping core: run the
batch group engine over a file's detected faces, and apply manual
corrections (create, merge, rename, delete) to the resulting groups.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&userIDFlag, "user", "", "User ID to operate on (defaults to FACEGROUP_TEST_USER_ID)")
	rootCmd.PersistentFlags().StringVar(&configFileFlag, "config", "", "Optional YAML file overriding environment-sourced config")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
