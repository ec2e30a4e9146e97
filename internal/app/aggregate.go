package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gigmap.app/gigmap/internal/catalog"
	"gigmap.app/gigmap/internal/cli"
	"gigmap.app/gigmap/internal/config"
	"gigmap.app/gigmap/internal/logging"
)

func runAggregate(args []string) int {
	fs := flag.NewFlagSet("aggregate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	bboxFlag := fs.String("bbox", "", "Bounding box filter as minLat,minLng,maxLat,maxLng")
	fromFlag := fs.String("from", "", "Only include events starting at or after this RFC3339 time")
	toFlag := fs.String("to", "", "Only include events starting at or before this RFC3339 time")
	timeout := fs.Duration("timeout", 2*time.Minute, "Overall run timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	params, fieldErrs := parseParams(*bboxFlag, *fromFlag, *toFlag)
	if len(fieldErrs) > 0 {
		for field, msg := range fieldErrs {
			fmt.Fprintf(os.Stderr, "invalid --%s: %s\n", field, msg)
		}
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	service := newService(cfg, logger)
	venues, err := service.LoadAggregated(ctx, params)
	if err != nil {
		logger.Error().Err(err).Msg("aggregation run failed")
		fmt.Fprintf(os.Stderr, "Aggregation failed: %v\n", err)
		return 1
	}
	if venues == nil {
		venues = []*catalog.CanonicalVenue{}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(venues); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode output: %v\n", err)
		return 1
	}
	return 0
}

func parseParams(bboxRaw, fromRaw, toRaw string) (catalog.Params, map[string]string) {
	fieldErrs := map[string]string{}
	params := catalog.Params{}

	if trimmed := strings.TrimSpace(bboxRaw); trimmed != "" {
		bbox, err := parseBBox(trimmed)
		if err != nil {
			fieldErrs["bbox"] = err.Error()
		} else {
			params.BBox = bbox
		}
	}

	if trimmed := strings.TrimSpace(fromRaw); trimmed != "" {
		ts, err := time.Parse(time.RFC3339, trimmed)
		if err != nil {
			fieldErrs["from"] = "must be RFC3339"
		} else {
			utc := ts.UTC()
			params.From = &utc
		}
	}

	if trimmed := strings.TrimSpace(toRaw); trimmed != "" {
		ts, err := time.Parse(time.RFC3339, trimmed)
		if err != nil {
			fieldErrs["to"] = "must be RFC3339"
		} else {
			utc := ts.UTC()
			params.To = &utc
		}
	}

	if params.From != nil && params.To != nil && params.From.After(*params.To) {
		fieldErrs["to"] = "must be at or after --from"
	}

	return params, fieldErrs
}

func parseBBox(raw string) (*catalog.BBox, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("must be minLat,minLng,maxLat,maxLng")
	}

	values := make([]float64, 4)
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("must contain four decimal coordinates")
		}
		values[i] = value
	}

	bbox := &catalog.BBox{
		MinLat: values[0],
		MinLng: values[1],
		MaxLat: values[2],
		MaxLng: values[3],
	}
	if err := bbox.Validate(); err != nil {
		return nil, err
	}
	return bbox, nil
}
