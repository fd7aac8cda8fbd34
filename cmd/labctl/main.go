package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smartlab-classroom/peerfabric/internal/command"
	"github.com/smartlab-classroom/peerfabric/internal/config"
	"github.com/smartlab-classroom/peerfabric/internal/health"
	"github.com/smartlab-classroom/peerfabric/internal/logging"
	"github.com/smartlab-classroom/peerfabric/pkg/labapi"
)

var version = "0.1.0"

var cfgFile string

var log = logging.L("main")

var rootCmd = &cobra.Command{
	Use:   "labctl",
	Short: "Classroom LAN peer fabric node",
	Long:  `labctl runs the discovery, remote-control, and backend-supervision node for a classroom's LAN peer fabric.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the node: backend supervisor, discovery, and remote-control listener",
	Run: func(cmd *cobra.Command, args []string) {
		runNode()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("labctl v%s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the node's current mode and configuration",
	Run: func(cmd *cobra.Command, args []string) {
		checkStatus()
	},
}

var modeCmd = &cobra.Command{
	Use:   "mode",
	Short: "Get or set this node's Teacher/Client role",
}

var modeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the persisted mode",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.LoadMode())
	},
}

var modeSetCmd = &cobra.Command{
	Use:   "set [Teacher|Client]",
	Short: "Persist this node's mode",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.SaveMode(config.Mode(args[0])); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

// callCmd lets operators exercise the command surface from a shell,
// the same JSON envelope the UI shell sends over labapi.Dispatch.
var callCmd = &cobra.Command{
	Use:   "call <operation> [json-args]",
	Short: "Invoke a single command-surface operation and print its JSON result",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		callOperation(args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches the platform config directory)")

	modeCmd.AddCommand(modeGetCmd, modeSetCmd)

	rootCmd.AddCommand(runCmd, versionCmd, statusCmd, modeCmd, callCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// runNode starts the backend supervisor, discovery advertiser, and
// remote-control listener, then blocks until interrupted.
func runNode() {
	cfg := loadConfig()
	logging.Init(cfg.LogFormat, cfg.LogLevel, os.Stdout)
	log = logging.L("main")

	monitor := health.NewMonitor()
	reg := command.New(cfg, monitor)

	if result := reg.StartBackend(); !result.Success {
		log.Warn("backend did not start", "message", result.Message)
	}
	reg.StartServerBroadcast()
	if result := reg.StartRemoteServer(cfg.RemoteServerPort); !result.Success {
		log.Error("remote-control server failed to start", "message", result.Message)
	}

	log.Info("node running", "version", version, "mode", config.LoadMode())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	reg.Shutdown()
	log.Info("node stopped")
}

func checkStatus() {
	cfg := loadConfig()
	fmt.Printf("Mode: %s\n", config.LoadMode())
	fmt.Printf("Remote-control port: %d\n", cfg.RemoteServerPort)
	fmt.Printf("Backend address: %s\n", cfg.BackendAddr)
	fmt.Printf("Scan concurrency: %d\n", cfg.ScanConcurrency)
}

// callOperation decodes args[1] (if given) as the operation's JSON
// argument payload and dispatches it through labapi, the same path
// the UI shell uses.
func callOperation(args []string) {
	cfg := loadConfig()
	logging.Init(cfg.LogFormat, cfg.LogLevel, os.Stdout)
	log = logging.L("main")

	reg := command.New(cfg, health.NewMonitor())

	req := labapi.Request{Op: args[0]}
	if len(args) == 2 {
		req.Args = json.RawMessage(args[1])
	}

	result := labapi.Dispatch(reg, req)
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(encoded))
	if !result.Success {
		os.Exit(1)
	}
}
