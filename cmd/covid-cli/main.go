package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rizwanaperveen/covid/internal/adapters/diseasesh"
	"github.com/rizwanaperveen/covid/internal/adapters/diseasesh/stub"
	"github.com/rizwanaperveen/covid/internal/cli"
)

// Default configuration constants.
const (
	defaultCountry = "India"
	defaultDays    = 30
	defaultTimeout = 30 * time.Second
)

func main() {
	var (
		country = flag.String("country", defaultCountry, "Country to report on")
		days    = flag.Int("days", defaultDays, "Number of trailing days of history")
		baseURL = flag.String("url", diseasesh.DefaultBaseURL, "Base URL of the disease.sh API")
		timeout = flag.Duration("timeout", defaultTimeout, "Per-request timeout, 0 for none")
		list    = flag.Bool("list", false, "Print the available countries and exit")
		useStub = flag.Bool("stub", false, "Serve embedded sample data instead of calling the API")
		verbose = flag.Bool("verbose", false, "Enable debug logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		cli.ShowHelp(os.Stdout)
		return
	}

	if err := cli.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config := &cli.Config{
		BaseURL: *baseURL,
		Country: *country,
		Days:    *days,
		Timeout: *timeout,
		List:    *list,
		Verbose: *verbose,
	}

	if *useStub {
		srv, err := stub.Start("127.0.0.1:0")
		if err != nil {
			os.Stderr.WriteString("Failed to start stub upstream: " + err.Error() + "\n")
			os.Exit(1)
		}
		defer func() { _ = srv.Close(context.Background()) }()
		config.BaseURL = srv.URL
	}

	if err := cli.Run(ctx, config, os.Stdout); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		stop()
		os.Exit(1) //nolint:gocritic // exitAfterDefer
	}
}
