// Command routeplanner plans shortest routes over an OpenStreetMap extract.
//
// Usage:
//
//	routeplanner route --map city.osm --start 10,10 --end 90,90
//	routeplanner route --map city.osm --start 10,10 --end 90,90 --json
//	routeplanner serve --map city.osm --addr :8080
//
// Coordinates are percentages (0-100) of the map extent, x first.
//
// Example requests against the server:
//
//	curl -X POST http://localhost:8080/v1/route \
//	  -H "Content-Type: application/json" \
//	  -d '{"start_x": 10, "start_y": 10, "end_x": 90, "end_y": 90}'
//
//	curl http://localhost:8080/metrics
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdrpinto/routeplanner/config"
	"github.com/pdrpinto/routeplanner/roadmodel"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	mapPath    string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:           "routeplanner",
		Short:         "Plan shortest routes over an OpenStreetMap extract",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&flags.mapPath, "map", "", "OSM XML extract (overrides map.file)")

	rootCmd.AddCommand(newRouteCmd(flags), newServeCmd(flags))
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// environment is everything a subcommand needs after startup.
type environment struct {
	cfg    config.Config
	logger *slog.Logger
	model  *roadmodel.Model
}

func loadEnvironment(ctx context.Context, flags *globalFlags) (*environment, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if flags.mapPath != "" {
		cfg.Map.File = flags.mapPath
	}
	if cfg.Map.File == "" {
		return nil, errors.New("no map given: use --map or map.file in the config")
	}

	logger := cfg.NewLogger(os.Stderr)
	model, err := roadmodel.LoadFile(ctx, cfg.Map.File, cfg.MapOptions(logger)...)
	if err != nil {
		return nil, err
	}
	return &environment{cfg: cfg, logger: logger, model: model}, nil
}
