package status

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/feedbridge/feedbridge/cmd/util"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// StatusCmd queries the health endpoint of a running bridge
var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running bridge",
	Long:  `Query the health endpoint of a running bridge and print its counters. Useful to check whether the browser has actually launched the host and whether snapshots are flowing.`,
	RunE:  runStatus,
}

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "endpoint"
	StatusCmd.PersistentFlags().String(key, "localhost:7654", util.WrapString("The address of the running bridge's HTTP API"))

	key = "timeout"
	StatusCmd.PersistentFlags().Duration(key, 5*time.Second, util.WrapString("How long to wait for the health response"))
}

// health mirrors the response shape of the bridge's health endpoint
type health struct {
	Status          string `json:"status"`
	PendingRequests int    `json:"pendingRequests"`
	LastBroadcast   string `json:"lastBroadcast"`
	CachedItems     int    `json:"cachedItems"`
	Version         string `json:"version"`
}

// runStatus fetches the health endpoint and pretty-prints it
func runStatus(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	client := &http.Client{Timeout: viper.GetDuration("timeout")}
	endpoint := viper.GetString("endpoint")

	resp, err := client.Get(fmt.Sprintf("http://%s/healthz", endpoint))
	if err != nil {
		return fmt.Errorf("bridge unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge answered %s", resp.Status)
	}

	var h health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}

	fmt.Printf("feedbridge v%s at %s\n", h.Version, endpoint)
	fmt.Printf("  %-22s: %s\n", "Status", h.Status)
	fmt.Printf("  %-22s: %d\n", "Pending Requests", h.PendingRequests)
	fmt.Printf("  %-22s: %s\n", "Last Broadcast", h.LastBroadcast)
	fmt.Printf("  %-22s: %d\n", "Cached Items", h.CachedItems)

	return nil
}

// initConfig reads in the env files and ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("feedbridge")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
