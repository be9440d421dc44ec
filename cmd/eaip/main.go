// Package main implements the eaip CLI tool for querying cached eAIP
// editions from the command line.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eaip-lib/eaip"
	"github.com/eaip-lib/eaip/query"
)

const (
	version = "0.1.0"
	usage   = `eaip - eAIP airfield lookup

Usage:
  eaip [options] -icao CODE...
  eaip [options] -list

Examples:
  eaip -icao EGKK
  eaip -icao EGKK,EGLL -json
  eaip -date 2020-09-20 -icao EGKK
  eaip -list
  eaip -cache /tmp/eaip -icao EGKK

Options:
`
)

// Config holds CLI configuration.
type Config struct {
	ICAOs       []string
	Date        string
	List        bool
	CacheDir    string
	BaseURL     string
	JSON        bool
	Refresh     bool
	Verbose     bool
	ShowVersion bool
	Help        bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("eaip v%s\n", version)
		os.Exit(0)
	}

	if config.Help || (len(config.ICAOs) == 0 && !config.List) {
		flag.Usage()
		os.Exit(0)
	}

	os.Exit(run(config))
}

func parseFlags() *Config {
	config := &Config{}

	var icaos string
	flag.StringVar(&icaos, "icao", "", "ICAO code(s) to look up (comma-separated)")
	flag.StringVar(&config.Date, "date", "", "Resolve the edition effective on this date (YYYY-MM-DD; default latest)")
	flag.BoolVar(&config.List, "list", false, "List every ICAO code in the edition's index")
	flag.StringVar(&config.CacheDir, "cache", "", "Cache directory (default ~/.cache/eaip-lib)")
	flag.StringVar(&config.BaseURL, "base-url", "", "Publication base URL (default UK NATS)")
	flag.BoolVar(&config.JSON, "json", false, "Emit JSON instead of text")
	flag.BoolVar(&config.Refresh, "refresh", false, "Bypass the document cache and re-download")
	flag.BoolVar(&config.Verbose, "verbose", false, "Log fetch and cache activity to stderr")
	flag.BoolVar(&config.ShowVersion, "v", false, "Show version")
	flag.BoolVar(&config.Help, "help", false, "Show help")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}

	flag.Parse()

	if icaos != "" {
		for _, code := range strings.Split(icaos, ",") {
			config.ICAOs = append(config.ICAOs, strings.ToUpper(strings.TrimSpace(code)))
		}
	}

	return config
}

func run(config *Config) int {
	sel := eaip.Latest()
	if config.Date != "" {
		date, err := time.Parse("2006-01-02", config.Date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -date %q: %v\n", config.Date, err)
			return 1
		}
		sel = eaip.AsOf(date)
	}

	opts := []eaip.Option{}
	if config.CacheDir != "" {
		opts = append(opts, eaip.WithCacheDir(config.CacheDir))
	}
	if config.BaseURL != "" {
		opts = append(opts, eaip.WithBaseURL(config.BaseURL))
	}
	if config.Refresh {
		opts = append(opts, eaip.WithBypassCache(true))
	}
	if config.Verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer logger.Sync()
		opts = append(opts, eaip.WithLogger(logger))
	}

	client, err := query.New(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx := context.Background()

	if config.List {
		return listCodes(ctx, client, sel, config)
	}

	hasErrors := false
	airfields := make([]*eaip.Airfield, 0, len(config.ICAOs))
	for _, icao := range config.ICAOs {
		a, err := client.GetAirfield(ctx, icao, sel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", icao, err)
			hasErrors = true
			continue
		}
		airfields = append(airfields, a)
	}

	if config.JSON {
		if err := writeJSON(airfields); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		for _, a := range airfields {
			printAirfield(a)
		}
	}

	if hasErrors {
		return 1
	}
	return 0
}

func listCodes(ctx context.Context, client *query.Client, sel eaip.DateSelector, config *Config) int {
	codes, err := client.AirfieldCodes(ctx, sel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if config.JSON {
		if err := writeJSON(codes); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}
	for _, code := range codes {
		fmt.Println(code)
	}
	return 0
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printAirfield(a *eaip.Airfield) {
	fmt.Printf("%s  %s  (edition %s)\n", a.ICAO, a.Name, a.Edition.ID)
	if a.Lat != 0 || a.Lon != 0 {
		fmt.Printf("  position: %.4f, %.4f\n", a.Lat, a.Lon)
	}
	for _, rwy := range a.Runways {
		fmt.Printf("  runway %s: %.0fx%.0f m", rwy.Designator, rwy.LengthMeters, rwy.WidthMeters)
		if rwy.Surface != "" {
			fmt.Printf(", %s", rwy.Surface)
		}
		fmt.Printf(", headings %.2f/%.2f\n", rwy.Headings[0], rwy.Headings[1])
	}
	for _, radio := range a.Radios {
		fmt.Printf("  radio %s", radio.Service)
		if radio.Callsign != "" {
			fmt.Printf(" (%s)", radio.Callsign)
		}
		fmt.Printf(": %.3f MHz\n", radio.FrequencyMHz)
	}
}
