package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdrpinto/routeplanner"
	"github.com/pdrpinto/routeplanner/roadmodel"
)

func newRouteCmd(flags *globalFlags) *cobra.Command {
	var (
		start, end string
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Plan one route and print its length",
		RunE: func(cmd *cobra.Command, args []string) error {
			startX, startY, err := parseCoordinate(start)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			endX, endY, err := parseCoordinate(end)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}

			env, err := loadEnvironment(cmd.Context(), flags)
			if err != nil {
				return err
			}
			result, err := routeplanner.Plan(cmd.Context(), env.model,
				startX, startY, endX, endY, env.cfg.SearchOptions(env.logger)...)
			if err != nil {
				return err
			}
			if err := printRoute(cmd.OutOrStdout(), env.model, result, jsonOutput); err != nil {
				return err
			}
			return result.Err()
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start coordinate as x,y in percent")
	cmd.Flags().StringVar(&end, "end", "", "end coordinate as x,y in percent")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the route as JSON")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

// parseCoordinate reads "x,y".
func parseCoordinate(value string) (x, y float64, err error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want x,y, got %q", value)
	}
	if x, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
		return 0, 0, fmt.Errorf("x: %w", err)
	}
	if y, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
		return 0, 0, fmt.Errorf("y: %w", err)
	}
	return x, y, nil
}

func printRoute(w io.Writer, model *roadmodel.Model, result routeplanner.Result[int], asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newRouteResponse(model, result))
	}
	if !result.Found() {
		_, err := fmt.Fprintf(w, "No path found (%d nodes expanded)\n", result.ExpandedNodes)
		return err
	}
	_, err := fmt.Fprintf(w, "Distance: %.2f m\nNodes: %d\nExpanded: %d\n",
		result.Distance, len(result.Path), result.ExpandedNodes)
	return err
}
