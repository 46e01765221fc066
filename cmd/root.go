package cmd

import (
	"fmt"
	"os"

	"github.com/feedbridge/feedbridge/bridge/common"
	"github.com/feedbridge/feedbridge/cmd/serve"
	"github.com/feedbridge/feedbridge/cmd/status"
	"github.com/spf13/cobra"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "feedbridge",
		Short: "Native messaging bridge between Thunderbird RSS feeds and a local HTTP API",
		Long: fmt.Sprintf(`feedbridge (v%s)

A native messaging host bridging a Thunderbird extension and local HTTP
clients: requests arrive over HTTP, travel to the extension as length-prefixed
JSON frames on stdout and are answered asynchronously on stdin.

The browser launches 'feedbridge serve' itself via the native messaging
manifest, 'feedbridge status' inspects a running instance.`, common.Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of feedbridge",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("feedbridge v%s\n", common.Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(status.StatusCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
