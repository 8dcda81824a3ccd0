// Package main provides a command-line client that prints the rain outlook
// for one Paris region.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	_ "time/tzdata" // FORECAST_TIMEZONE must resolve on images without zoneinfo

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/rainparis/rainparis/internal/api/models"
	"github.com/rainparis/rainparis/internal/app"
	"github.com/rainparis/rainparis/internal/config"
	"github.com/rainparis/rainparis/internal/region"
	"github.com/rainparis/rainparis/internal/weather"
)

// Version is set at compile time via ldflags.
var Version = "dev"

// reporter is the part of weather.Service the command uses.
type reporter interface {
	Report(ctx context.Context, regionID int) (*weather.Report, error)
	Regions() []region.Region
}

type options struct {
	list    bool
	json    bool
	minutes int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr, newService))
}

func newService(stderr io.Writer) (reporter, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	// Only warnings and errors reach the terminal.
	log := app.NewLogger(cfg, stderr, "rainparis-cli", Version).Level(zerolog.WarnLevel)
	return app.NewWeatherService(cfg, app.Deps{Logger: log}), nil
}

func run(
	ctx context.Context,
	args []string,
	stdout, stderr io.Writer,
	build func(io.Writer) (reporter, error),
) int {
	opts, id, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	svc, err := build(stderr)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	if opts.list {
		printRegions(stdout, svc.Regions())
		return 0
	}

	report, err := svc.Report(ctx, id)
	if err != nil {
		fmt.Fprintln(stderr, "error:", describe(err))
		return 1
	}

	if opts.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(models.NewWeatherResponse(report)); err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return 1
		}
		return 0
	}

	printReport(stdout, report, opts.minutes)
	return 0
}

func parseArgs(args []string, stderr io.Writer) (options, int, error) {
	var opts options

	fs := pflag.NewFlagSet("rainparis", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVarP(&opts.list, "list", "l", false, "list regions and exit")
	fs.BoolVar(&opts.json, "json", false, "print the report as JSON")
	fs.IntVarP(&opts.minutes, "minutes", "m", 15, "number of forecast minutes to print")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: rainparis [flags] [region-id]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, 0, err
	}

	if opts.minutes < 0 {
		return opts, 0, fmt.Errorf("--minutes must not be negative")
	}

	id := region.AggregateID
	switch fs.NArg() {
	case 0:
	case 1:
		n, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			return opts, 0, fmt.Errorf("region id %q is not a number", fs.Arg(0))
		}
		id = n
	default:
		return opts, 0, fmt.Errorf("expected at most one region id, got %d", fs.NArg())
	}

	return opts, id, nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, region.ErrNotFound):
		return "unknown region, run with --list to see valid ids"
	case errors.Is(err, weather.ErrNotConfigured):
		return "TOMORROW_API_KEY is not set"
	default:
		return err.Error()
	}
}

func printRegions(w io.Writer, regions []region.Region) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, r := range regions {
		fmt.Fprintf(tw, "%d\t%s\n", r.ID, r.Name)
	}
	_ = tw.Flush()
}

func printReport(w io.Writer, report *weather.Report, minutes int) {
	if report.Region.IsAggregate() {
		fmt.Fprintf(w, "%s (whole city)\n", report.Region.Name)
	} else {
		fmt.Fprintln(w, report.Region.Name)
	}
	fmt.Fprintln(w, report.Summary.Text)

	if report.Current != nil {
		if report.Current.Temperature != nil {
			fmt.Fprintf(w, "Temperature: %.1f°C\n", *report.Current.Temperature)
		} else {
			fmt.Fprintln(w, "Temperature: n/a")
		}
		fmt.Fprintf(w, "Precipitation: %.2f mm/h\n", report.Current.PrecipitationIntensity)
	}

	points := report.Chart
	if minutes < len(points) {
		points = points[:minutes]
	}
	if len(points) == 0 {
		return
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "TIME\tMM/H\t")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%.2f\t\n", p.Time, p.Precipitation)
	}
	_ = tw.Flush()
}
