// Package cmd implements the pacs-index-api command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pacs-index-api",
	Short: "PACS metadata index for NAS-based DICOM storage",
	Long: `Indexes DICOM file headers on a NAS share into a searchable
sqlite metadata database and serves search and retrieval APIs on top of
it. The original files are never copied or modified.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pacs-index-api.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".pacs-index-api")
	}

	viper.SetDefault("port", "localhost:3000")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_textlogging", false)
	viper.SetDefault("enable_cors", false)
	viper.SetDefault("nas_path", "")
	viper.SetDefault("db_path", "")
	viper.SetDefault("orthanc_url", "http://localhost:8042")

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
