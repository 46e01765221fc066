package serve

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/feedbridge/feedbridge/api"
	"github.com/feedbridge/feedbridge/bridge/common"
	"github.com/feedbridge/feedbridge/bridge/correlation"
	"github.com/feedbridge/feedbridge/bridge/host"
	"github.com/feedbridge/feedbridge/bridge/transport/stdio"
	"github.com/feedbridge/feedbridge/cmd/util"
	"github.com/joho/godotenv"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Logger = logger.GetLogger("cmd")

var (
	serveCmdConfig = &common.BridgeConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Run the bridge as a native messaging host",
		Long:    `Run the bridge process: length-prefixed JSON frames on stdin and stdout speak to the browser extension while the HTTP API answers local clients. The configuration can be set via command line flags or environment variables. The format of the environment variables is FEEDBRIDGE_<flag> (e.g. FEEDBRIDGE_ENDPOINT=localhost:7654)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "localhost:7654", util.WrapString("The address on which the HTTP API will listen. Keep it on localhost, the API is not meant to leave the machine"))

	key = "static-dir"
	ServeCmd.PersistentFlags().String(key, "", util.WrapString("Directory containing the index.html served at the root path. Leave empty to disable the status page"))

	key = "max-frame-bytes"
	ServeCmd.PersistentFlags().Uint32(key, 32*1024*1024, util.WrapString("Upper bound for a single inbound frame in bytes. Larger frames are dropped without breaking the stream"))

	key = "timeout-refresh"
	ServeCmd.PersistentFlags().Duration(key, 20*time.Second, util.WrapString("How long an unread refresh waits for fresh data before answering with the cached snapshot"))

	key = "timeout-item"
	ServeCmd.PersistentFlags().Duration(key, 10*time.Second, util.WrapString("How long a single item fetch waits for the extension's reply"))

	key = "timeout-mark-read"
	ServeCmd.PersistentFlags().Duration(key, 5*time.Second, util.WrapString("How long a mark-as-read request waits for the extension's confirmation"))

	key = "timeout-folder"
	ServeCmd.PersistentFlags().Duration(key, 30*time.Second, util.WrapString("How long a folder listing waits for the extension's reply"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "log-file"
	ServeCmd.PersistentFlags().String(key, "", util.WrapString("File to append logs to. Defaults to stderr, stdout always belongs to the frame channel"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the bridge configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.StaticDir = viper.GetString("static-dir")
	serveCmdConfig.MaxFrameBytes = viper.GetUint32("max-frame-bytes")
	serveCmdConfig.Timeouts = common.TimeoutConfig{
		Refresh:  viper.GetDuration("timeout-refresh"),
		Item:     viper.GetDuration("timeout-item"),
		MarkRead: viper.GetDuration("timeout-mark-read"),
		Folder:   viper.GetDuration("timeout-folder"),
	}
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.LogFile = viper.GetString("log-file")

	return serveCmdConfig.Validate()
}

// run starts the bridge and blocks until the extension closes the stream
func run(_ *cobra.Command, _ []string) error {
	// logs must never reach stdout, the extension reads frames there
	logSink := io.Writer(os.Stderr)
	if serveCmdConfig.LogFile != "" {
		f, err := os.OpenFile(serveCmdConfig.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logSink = f
	}
	common.InitLoggers(serveCmdConfig.LogLevel, logSink)

	Logger.Infof("Starting feedbridge v%s", common.Version)
	Logger.Infof(serveCmdConfig.String())

	store := correlation.NewStore()
	channel := stdio.NewStdio(serveCmdConfig.MaxFrameBytes)
	bridge := host.NewBridgeHost(channel, store)
	server := api.NewServer(serveCmdConfig, bridge)

	// the HTTP API serves until the frame channel shuts the process down
	go func() {
		if err := server.Serve(); err != nil {
			Logger.Errorf("HTTP server failed: %v", err)
		}
	}()

	// block on the inbound router, EOF from the extension ends the process
	err := bridge.Run()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if closeErr := server.Close(shutdownCtx); closeErr != nil {
		Logger.Errorf("HTTP server shutdown: %v", closeErr)
	}

	return err
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
