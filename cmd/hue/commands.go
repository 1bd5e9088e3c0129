package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/angristan/hue-panel/internal/api"
	"github.com/angristan/hue-panel/internal/config"
	"github.com/angristan/hue-panel/internal/discovery"
)

// Discovery and pairing flags
var (
	skipCloud    bool
	concurrency  int
	probeTimeout time.Duration
	pairWait     time.Duration
	noSave       bool
)

// pairRetryInterval is how often pairing is retried while waiting for the
// link button.
var pairRetryInterval = time.Second

func init() {
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(pairCmd)
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find Hue bridges on the local network",
	Long: `Search for bridges using the Hue cloud lookup, SSDP, mDNS and a sweep of
the local /24. Every address found is printed on its own line.`,
	Example: `  # Search everywhere
  hue discover

  # Stay on the local network
  hue discover --skip-cloud

  # Gentler sweep on a slow network
  hue discover --concurrency 8 --probe-timeout 1s`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().BoolVar(&skipCloud, "skip-cloud", false, "Do not query discovery.meethue.com")
	discoverCmd.Flags().IntVar(&concurrency, "concurrency", 32, "Maximum probes in flight during the subnet sweep")
	discoverCmd.Flags().DurationVar(&probeTimeout, "probe-timeout", 500*time.Millisecond, "Timeout for each sweep probe")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	hc := api.NewHTTPClient()
	engine := discovery.NewEngine(hc, discovery.WithStrategies(
		&discovery.SSDP{},
		&discovery.Hostname{},
		&discovery.MDNS{},
		&discovery.Sweep{Concurrency: concurrency, ProbeTimeout: probeTimeout},
	))

	fmt.Fprintln(cmd.ErrOrStderr(), "Searching for Hue bridges...")
	return printBridges(cmd.OutOrStdout(), engine.Discover(cmd.Context(), skipCloud))
}

func printBridges(w io.Writer, ips []string) error {
	if len(ips) == 0 {
		fmt.Fprintln(w, "No bridge found.")
		return nil
	}
	for _, ip := range ips {
		fmt.Fprintln(w, ip)
	}
	return nil
}

var pairCmd = &cobra.Command{
	Use:   "pair <bridge-ip>",
	Short: "Pair with a bridge and store the credential",
	Long: `Request a new username from the bridge. Press the link button on the
bridge before or while this command runs; pairing is retried every second
until --wait elapses.`,
	Example: `  # Pair and save to the config file
  hue pair 192.168.1.23

  # Print the username only
  hue pair 192.168.1.23 --no-save`,
	Args: cobra.ExactArgs(1),
	RunE: runPair,
}

func init() {
	pairCmd.Flags().DurationVar(&pairWait, "wait", 30*time.Second, "How long to wait for the link button")
	pairCmd.Flags().BoolVar(&noSave, "no-save", false, "Print the username without saving it")
}

func runPair(cmd *cobra.Command, args []string) error {
	ip := args[0]
	client := api.NewClient(api.StaticConfig{}, api.WithHTTPClient(api.NewHTTPClient()))

	fmt.Fprintf(cmd.ErrOrStderr(), "Press the link button on the bridge at %s...\n", ip)
	username, err := pairWithRetry(cmd.Context(), client, ip, pairWait, pairRetryInterval)
	if err != nil {
		return err
	}

	if !noSave {
		store, err := config.NewStore("")
		if err != nil {
			return err
		}
		if err := store.Save(config.BridgeConfig{BridgeIP: ip, Username: username}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved to %s\n", store.Path())
	}

	fmt.Fprintln(cmd.OutOrStdout(), username)
	return nil
}

type pairer interface {
	CreateUser(ctx context.Context, bridgeIP, deviceType string) (string, error)
}

// pairWithRetry calls CreateUser until it succeeds, fails with anything other
// than ErrPairingRequired, or wait elapses.
func pairWithRetry(ctx context.Context, p pairer, ip string, wait, every time.Duration) (string, error) {
	deadline := time.Now().Add(wait)
	for {
		attemptCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		username, err := p.CreateUser(attemptCtx, ip, "")
		cancel()
		if err == nil {
			return username, nil
		}
		if !errors.Is(err, api.ErrPairingRequired) || time.Now().Add(every).After(deadline) {
			return "", err
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(every):
		}
	}
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the stored bridge settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the bridge address and username in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.NewStore("")
		if err != nil {
			return err
		}
		cfg := store.Load()
		if !cfg.Configured() {
			return api.ErrConfigMissing
		}
		fmt.Fprintf(cmd.OutOrStdout(), "bridge_ip: %s\nusername:  %s\n", cfg.BridgeIP, cfg.Username)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.NewStore("")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), store.Path())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:     "set <bridge-ip> <username>",
	Short:   "Store a known bridge address and username",
	Example: `  hue config set 192.168.1.23 1a2b3c4d5e6f`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.NewStore("")
		if err != nil {
			return err
		}
		if err := store.Save(config.BridgeConfig{BridgeIP: args[0], Username: args[1]}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved to %s\n", store.Path())
		return nil
	},
}
