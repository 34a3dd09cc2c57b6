package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wakelight/pkg/config"
)

var (
	loginAPIKey  string
	loginURLGet  string
	loginURLPost string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the Govee API credentials",
	Long: `Save the API key (and optionally the endpoint URLs) to the config
file. Every device command is parameterized by these.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.SaveCredentials(loginAPIKey, loginURLGet, loginURLPost); err != nil {
			fmt.Printf("Error saving credentials: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Credentials saved.")
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginAPIKey, "api-key", "", "Govee API key (required)")
	loginCmd.Flags().StringVar(&loginURLGet, "url-get", "", "Device list endpoint override")
	loginCmd.Flags().StringVar(&loginURLPost, "url-post", "", "Device control endpoint override")
	loginCmd.MarkFlagRequired("api-key")

	rootCmd.AddCommand(loginCmd)
}
