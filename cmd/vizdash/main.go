package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
	logFormat  string
	theme      string

	addr      string
	preset    string
	sets      []string
	selection string
	outDir    string
	format    string
	asJSON    bool
	width     int
	height    int
	exports   bool
	live      bool
	delay     float64
	exportTo  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "vizdash",
		Short:        "reactive chart dashboards in the terminal and the browser",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runTUI,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "", "terminal theme (cyberpunk, minimal, ocean, sunset)")
	rootCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")

	tuiCmd := &cobra.Command{
		Use:   "tui [dashboard]",
		Short: "interactive terminal dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTUI,
	}
	tuiCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve dashboards over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address")

	renderCmd := &cobra.Command{
		Use:   "render <dashboard>",
		Short: "recompute once and print or save the charts",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	addStateFlags(renderCmd)
	renderCmd.Flags().StringVar(&outDir, "out", "", "write images to this directory instead of printing")
	renderCmd.Flags().StringVar(&format, "format", "svg", "image format (svg, png)")
	renderCmd.Flags().BoolVar(&asJSON, "json", false, "print the update as JSON")
	renderCmd.Flags().IntVar(&width, "width", 80, "terminal chart width")
	renderCmd.Flags().IntVar(&height, "height", 14, "terminal chart height")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list dashboards",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	listCmd.Flags().BoolVar(&exports, "exports", false, "list saved exports instead")

	controlsCmd := &cobra.Command{
		Use:   "controls <dashboard>",
		Short: "show controls, filters and outputs of a dashboard",
		Args:  cobra.ExactArgs(1),
		RunE:  runControls,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [dashboard]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPresets,
	}

	exportCmd := &cobra.Command{
		Use:   "export <dashboard>",
		Short: "write one recomputation to disk",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	addStateFlags(exportCmd)
	exportCmd.Flags().StringVar(&outDir, "dir", "", "export directory")
	exportCmd.Flags().StringVar(&format, "format", "svg", "image formats, comma separated (svg, png)")

	replayCmd := &cobra.Command{
		Use:   "replay <scenario.yaml>",
		Short: "replay a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplay,
	}
	replayCmd.Flags().StringVar(&exportTo, "export", "", "export every update into this directory")
	replayCmd.Flags().BoolVar(&live, "live", false, "redraw the charts after each step")
	replayCmd.Flags().Float64Var(&delay, "delay", 0.5, "seconds to pause per step with --live")

	rootCmd.AddCommand(tuiCmd, serveCmd, renderCmd, listCmd, controlsCmd, presetsCmd, exportCmd, replayCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addStateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "apply a preset")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "set a control, id=value (lists comma separated)")
	cmd.Flags().StringVar(&selection, "select", "", "click a location")
}
