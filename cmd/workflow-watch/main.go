package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/skybooklabs/skybook-backend/internal/workflow"
	"github.com/skybooklabs/skybook-backend/pkg/config"
	"github.com/skybooklabs/skybook-backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "workflow-watch", Level: zerolog.WarnLevel})

	// Env supplies the defaults, flags override.
	var wcfg config.WorkflowConfig
	if err := envconfig.Process("", &wcfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid workflow environment: %v\n", err)
		os.Exit(2)
	}

	baseURL := flag.String("api", wcfg.APIBaseURL, "API base URL")
	interval := flag.Duration("interval", wcfg.PollInterval(), "poll interval")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: workflow-watch [-api URL] [-interval 800ms] <order-id>")
		os.Exit(2)
	}
	orderID, err := uuid.Parse(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid order id %q: %v\n", flag.Arg(0), err)
		os.Exit(2)
	}

	poller, err := workflow.NewPoller(workflow.PollerParams{
		Source:   workflow.NewClient(*baseURL, 0),
		Interval: *interval,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create poller", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for view := range poller.Watch(ctx, orderID) {
		// Clear the screen and repaint the whole frame.
		fmt.Print("\033[2J\033[H")
		fmt.Print(renderView(orderID.String(), view))
	}
}
