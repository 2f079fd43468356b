// Command genops runs one cached generation request, or serves the
// operational HTTP endpoints.
//
// Usage:
//
//	genops --config genops.yaml --operation resume_rewrite --input '{"resume":"..."}' --prompt "..."
//	genops --config genops.yaml --job-query "go developer" --location berlin
//	genops --config genops.yaml --serve :8080
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/jonwraymond/genops/config"
	"github.com/jonwraymond/genops/service"
)

// Build information, set with -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

type flags struct {
	configPath string
	operation  string
	input      string
	prompt     string
	serve      string
	version    bool

	jobQuery   string
	location   string
	remote     bool
	datePosted string
	jobTypes   []string
	page       int
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := pflag.NewFlagSet("genops", pflag.ContinueOnError)
	fs.StringVarP(&f.configPath, "config", "c", "", "path to a YAML config file")
	fs.StringVarP(&f.operation, "operation", "o", "", "operation name")
	fs.StringVarP(&f.input, "input", "i", "null", "operation input as JSON")
	fs.StringVarP(&f.prompt, "prompt", "p", "", "generation prompt")
	fs.StringVar(&f.serve, "serve", "", "serve health and metrics on this address instead of running a request")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	fs.StringVar(&f.jobQuery, "job-query", "", "run a job search for this query")
	fs.StringVar(&f.location, "location", "", "job search location")
	fs.BoolVar(&f.remote, "remote", false, "job search: remote only")
	fs.StringVar(&f.datePosted, "date-posted", "", "job search: posting age, e.g. week")
	fs.StringSliceVar(&f.jobTypes, "employment-type", nil, "job search: employment types")
	fs.IntVar(&f.page, "page", 1, "job search: result page")

	if err := fs.Parse(args); err != nil {
		return f, err
	}
	return f, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil && !errors.Is(err, pflag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "genops: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if f.version {
		_, err := fmt.Fprintf(stdout, "genops %s (%s)\n", Version, GitCommit)
		return err
	}

	cfg, err := config.LoadContext(ctx, f.configPath)
	if err != nil {
		return err
	}
	if f.serve != "" {
		cfg.HTTP.Addr = f.serve
	}
	if cfg.Observe.Version == "" {
		cfg.Observe.Version = Version
	}

	svc, err := service.New(ctx, *cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if cerr := svc.Close(closeCtx); cerr != nil {
			fmt.Fprintf(os.Stderr, "genops: close: %v\n", cerr)
		}
	}()

	if f.serve != "" {
		return serve(ctx, cfg.HTTP, svc)
	}
	return runOnce(ctx, f, svc, stdout)
}

func runOnce(ctx context.Context, f flags, svc *service.Service, stdout io.Writer) error {
	if f.jobQuery != "" {
		res, err := svc.SearchJobs(ctx, service.JobQuery{
			Query:           f.jobQuery,
			Location:        f.location,
			Remote:          f.remote,
			DatePosted:      f.datePosted,
			EmploymentTypes: f.jobTypes,
			Page:            f.page,
		})
		if err != nil {
			return err
		}
		return writeResult(stdout, res)
	}

	if f.operation == "" {
		return errors.New("--operation or --job-query is required")
	}
	var input any
	if err := json.Unmarshal([]byte(f.input), &input); err != nil {
		return fmt.Errorf("--input: %w", err)
	}
	res, err := svc.Generate(ctx, f.operation, input, f.prompt)
	if err != nil {
		return err
	}
	return writeResult(stdout, res)
}
