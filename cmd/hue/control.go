package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/angristan/hue-panel/internal/api"
	"github.com/angristan/hue-panel/internal/config"
	"github.com/angristan/hue-panel/internal/models"
)

var (
	jsonOutput bool
	rawOutput  bool
)

// newBridge builds the client used by the scripting commands
var newBridge = func() (api.Bridge, error) {
	store, err := config.NewStore("")
	if err != nil {
		return nil, err
	}
	return api.NewClient(store, api.WithHTTPClient(api.NewHTTPClient())), nil
}

func init() {
	for _, c := range []*cobra.Command{lightsCmd, roomsCmd, roomLightsCmd} {
		c.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(itemCmd(models.KindLight))
	rootCmd.AddCommand(itemCmd(models.KindRoom))
}

var lightsCmd = &cobra.Command{
	Use:   "lights",
	Short: "List every light on the bridge",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listItems(cmd, func(ctx context.Context, b api.Bridge) (map[int]models.ItemState, error) {
			return b.ListLights(ctx)
		})
	},
}

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List rooms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listItems(cmd, func(ctx context.Context, b api.Bridge) (map[int]models.ItemState, error) {
			return b.ListRooms(ctx)
		})
	},
}

var roomLightsCmd = &cobra.Command{
	Use:     "room-lights <room-id>",
	Short:   "List the lights of one room",
	Example: `  hue room-lights 2`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return listItems(cmd, func(ctx context.Context, b api.Bridge) (map[int]models.ItemState, error) {
			return b.ListLightsForRoom(ctx, id)
		})
	},
}

func listItems(cmd *cobra.Command, list func(context.Context, api.Bridge) (map[int]models.ItemState, error)) error {
	bridge, err := newBridge()
	if err != nil {
		return err
	}
	items, err := list(cmd.Context(), bridge)
	if err != nil {
		return err
	}

	sorted := models.Sorted(items)
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(sorted)
	}
	printItems(cmd.OutOrStdout(), sorted)
	return nil
}

func printItems(w io.Writer, items []models.ItemState) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Nothing found.")
		return
	}
	for _, it := range items {
		state := "off"
		if it.On {
			state = "on"
		}
		colour := ""
		if it.SupportsColor {
			colour = "colour"
		}
		fmt.Fprintf(w, "%4d  %-28s %-3s  %3d%%  %s\n", it.ID, it.Name, state, it.Brightness, colour)
	}
}

// itemCmd builds "hue light ..." or "hue room ..."
func itemCmd(kind models.Kind) *cobra.Command {
	noun := kind.String()
	parent := &cobra.Command{
		Use:   noun,
		Short: fmt.Sprintf("Control a single %s", noun),
		Example: fmt.Sprintf(`  hue %[1]s on 3
  hue %[1]s brightness 3 40
  hue %[1]s color 3 200 60`, noun),
	}
	parent.PersistentFlags().BoolVar(&rawOutput, "raw", false, "Print the bridge response")

	parent.AddCommand(&cobra.Command{
		Use:   "on <id>",
		Short: fmt.Sprintf("Switch the %s on", noun),
		Args:  cobra.ExactArgs(1),
		RunE: withItem(kind, 0, func(ctx context.Context, b api.Bridge, key models.ItemKey, _ []float64) (json.RawMessage, error) {
			return api.SetOn(ctx, b, key, true)
		}),
	})
	parent.AddCommand(&cobra.Command{
		Use:   "off <id>",
		Short: fmt.Sprintf("Switch the %s off", noun),
		Args:  cobra.ExactArgs(1),
		RunE: withItem(kind, 0, func(ctx context.Context, b api.Bridge, key models.ItemKey, _ []float64) (json.RawMessage, error) {
			return api.SetOn(ctx, b, key, false)
		}),
	})
	parent.AddCommand(&cobra.Command{
		Use:   "brightness <id> <percent>",
		Short: "Set brightness in percent (1-100)",
		Args:  cobra.ExactArgs(2),
		RunE: withItem(kind, 1, func(ctx context.Context, b api.Bridge, key models.ItemKey, v []float64) (json.RawMessage, error) {
			return api.SetBrightness(ctx, b, key, percentArg(v[0]))
		}),
	})
	parent.AddCommand(&cobra.Command{
		Use:   "color <id> <hue-degrees> <saturation-percent>",
		Short: "Set colour from hue (0-360) and saturation (0-100)",
		Args:  cobra.ExactArgs(3),
		RunE: withItem(kind, 2, func(ctx context.Context, b api.Bridge, key models.ItemKey, v []float64) (json.RawMessage, error) {
			return api.SetColor(ctx, b, key, v[0], v[1])
		}),
	})
	parent.AddCommand(&cobra.Command{
		Use:   "status <id>",
		Short: fmt.Sprintf("Print the %s's state", noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			bridge, err := newBridge()
			if err != nil {
				return err
			}
			item, err := api.Item(cmd.Context(), bridge, models.ItemKey{Kind: kind, ID: id})
			if err != nil {
				return err
			}
			printItems(cmd.OutOrStdout(), []models.ItemState{item})
			return nil
		},
	})
	return parent
}

type itemAction func(ctx context.Context, b api.Bridge, key models.ItemKey, values []float64) (json.RawMessage, error)

// withItem parses "<id> [values...]" and runs action against the bridge
func withItem(kind models.Kind, nvalues int, action itemAction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		values := make([]float64, 0, nvalues)
		for _, arg := range args[1 : 1+nvalues] {
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("invalid number %q", arg)
			}
			values = append(values, v)
		}

		bridge, err := newBridge()
		if err != nil {
			return err
		}
		payload, err := action(cmd.Context(), bridge, models.ItemKey{Kind: kind, ID: id}, values)
		if err != nil {
			return err
		}
		if rawOutput {
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		}
		return nil
	}
}

// percentArg clamps before converting so huge values cannot overflow int
func percentArg(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
