package main

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/angristan/hue-panel/internal/emulator"
	"github.com/angristan/hue-panel/internal/logging"
)

var (
	emulateAddr string
	emulateSSDP bool
	emulateLink bool
)

func init() {
	emulateCmd.Flags().StringVar(&emulateAddr, "addr", "127.0.0.1:8080", "Address to serve the bridge API on")
	emulateCmd.Flags().BoolVar(&emulateSSDP, "ssdp", false, "Answer SSDP searches so discovery finds the emulator")
	emulateCmd.Flags().BoolVar(&emulateLink, "link", false, "Keep the link button pressed so pairing always succeeds")
	rootCmd.AddCommand(emulateCmd)
}

var emulateCmd = &cobra.Command{
	Use:   "emulate",
	Short: "Run an emulated Hue bridge with demo lights",
	Long: `Serve an in-memory bridge speaking the Hue v1 API. Useful for trying the
interface or scripts without hardware. The demo credential is "demo".`,
	Example: `  # Serve on the default port
  hue emulate

  # Discoverable over SSDP and pairable
  hue emulate --addr 0.0.0.0:8080 --ssdp --link`,
	Args: cobra.NoArgs,
	RunE: runEmulate,
}

func runEmulate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	bridge := emulator.New(emulator.WithDemoData(), emulator.WithUser("demo"))

	ln, err := net.Listen("tcp", emulateAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", emulateAddr, err)
	}
	addr := ln.Addr().String()

	if emulateLink {
		go func() {
			ticker := time.NewTicker(20 * time.Second)
			defer ticker.Stop()
			for {
				bridge.PressLinkButton(30 * time.Second)
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
		}()
	}

	if emulateSSDP {
		conn, err := emulator.ListenMulticast()
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("failed to join SSDP group: %w", err)
		}
		responder := &emulator.Responder{
			Location: "http://" + addr + "/description.xml",
			BridgeID: bridge.BridgeID(),
		}
		go func() {
			if err := responder.Serve(ctx, conn); err != nil {
				logging.Warn("SSDP responder stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{Handler: bridge.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "Emulated bridge %s listening on http://%s (username: demo)\n", bridge.BridgeID(), addr)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Served %d requests\n", bridge.Requests())
	return nil
}
