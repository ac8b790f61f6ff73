// Command consolectl enqueues and inspects the console worker's jobs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/stockdesk/console/cmd/consolectl/cli"
	"github.com/stockdesk/console/internal/app"
)

const usage = `usage: consolectl [-json] jobs <command>

commands:
  trigger <type>     enqueue orders:import or stock:scan now
  stats              show the default queue counters
  scheduled [-n N]   list upcoming scheduled tasks
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("consolectl", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "print JSON")
	fs.Usage = func() { _, _ = fmt.Fprint(os.Stderr, usage) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) < 2 || rest[0] != "jobs" {
		fs.Usage()
		return 2
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobsCLI := cli.NewJobsCLI(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer func() { _ = jobsCLI.Close() }()

	out := cli.Output{JSON: *jsonOut}
	switch rest[1] {
	case "trigger":
		if len(rest) != 3 {
			fs.Usage()
			return 2
		}
		return jobsCLI.TriggerCommand(ctx, rest[2], out)
	case "stats":
		return jobsCLI.StatsCommand(out)
	case "scheduled":
		sub := flag.NewFlagSet("scheduled", flag.ContinueOnError)
		size := sub.Int("n", 10, "page size")
		if err := sub.Parse(rest[2:]); err != nil {
			return 2
		}
		return jobsCLI.ScheduledCommand(*size, out)
	default:
		fs.Usage()
		return 2
	}
}
