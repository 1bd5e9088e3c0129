package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/angristan/hue-panel/internal/api"
	"github.com/angristan/hue-panel/internal/config"
	"github.com/angristan/hue-panel/internal/coordinator"
	"github.com/angristan/hue-panel/internal/discovery"
	"github.com/angristan/hue-panel/internal/emulator"
	"github.com/angristan/hue-panel/internal/logging"
	"github.com/angristan/hue-panel/internal/tui"
	"github.com/angristan/hue-panel/internal/version"
)

var demoMode bool

var rootCmd = &cobra.Command{
	Use:   "hue",
	Short: "Control Philips Hue lights from the terminal",
	Long: `hue finds the Hue bridge on your network, pairs with it and lets you
switch, dim and colour lights and rooms.

Run without arguments for the interactive interface, or use the
subcommands from scripts.`,
	Version:       version.Full(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()
		if err := logging.InitializeFromEnv(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	},
	RunE: runUI,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().BoolVar(&demoMode, "demo", os.Getenv("HUE_DEMO") != "", "Drive a built-in emulated bridge instead of a real one")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", api.Describe(err))
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hue %s\n", version.Full())
	},
}

func runUI(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return cmd.Help()
	}

	// stderr is the screen the UI draws on
	logPath, _ := config.DefaultLogPath()
	if err := logging.InitializeForUI("", logPath); err != nil {
		logging.Disable()
	}

	hc := api.NewHTTPClient()
	opts := tui.Options{
		Discoverer: discovery.NewEngine(hc),
	}

	if demoMode {
		addr, shutdown, err := startDemoBridge()
		if err != nil {
			return fmt.Errorf("failed to start demo bridge: %w", err)
		}
		defer shutdown()

		source := api.StaticConfig(config.BridgeConfig{BridgeIP: addr, Username: "demo"})
		opts.Config = source
		opts.Bridge = api.NewClient(source, api.WithHTTPClient(hc))
		opts.Notice = "Demo mode: changes go to an emulated bridge"
	} else {
		store, err := config.NewStore("")
		if err != nil {
			return err
		}
		opts.Config = store
		opts.Store = store
		opts.Bridge = api.NewClient(store, api.WithHTTPClient(hc))
	}

	presets, err := config.LoadPresets("")
	if err != nil {
		opts.Notice = err.Error()
	}
	opts.Presets = presets

	coord := coordinator.New(coordinator.WithLogger(logging.Named("coordinator")))
	defer coord.Close()
	opts.Coordinator = coord

	p := tea.NewProgram(
		tui.NewModel(opts),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}

// startDemoBridge serves a seeded emulator on a loopback port
func startDemoBridge() (addr string, shutdown func(), err error) {
	bridge := emulator.New(emulator.WithDemoData(), emulator.WithUser("demo"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	srv := &http.Server{Handler: bridge.Handler()}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn("demo bridge stopped", zap.Error(err))
		}
	}()

	return ln.Addr().String(), func() { _ = srv.Close() }, nil
}
