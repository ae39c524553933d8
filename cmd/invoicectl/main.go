package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	ctl "github.com/KevinDennyII/crm-windshield-repair-sa-sub003/cmd/invoicectl/cli"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/app"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/platform/cache"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/jobs"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "invoicectl",
		Usage: "render and queue auto-glass invoices",
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "render job JSON files into invoice PDFs",
				ArgsUsage: "job.json...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "output directory"},
					&cli.IntFlag{Name: "concurrency", Aliases: []string{"c"}, Value: 4, Usage: "files rendered in parallel"},
					&cli.BoolFlag{Name: "json", Usage: "print a JSON summary"},
				},
				Action: render,
			},
			{
				Name:      "classify",
				Usage:     "print the document variant of a job",
				ArgsUsage: "job.json",
				Flags:     []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "print a JSON summary"}},
				Action: func(c *cli.Context) error {
					code := ctl.ClassifyCommand(ctl.ClassifyOptions{
						File:       c.Args().First(),
						JSONOutput: c.Bool("json"),
						Stdout:     c.App.Writer,
						Stderr:     c.App.ErrWriter,
					})
					return exit(code)
				},
			},
			{
				Name:      "enqueue",
				Usage:     "queue background generation for a stored job",
				ArgsUsage: "JOB-NUMBER",
				Action:    enqueue,
			},
			{
				Name:   "queue-stats",
				Usage:  "show invoice queue statistics",
				Action: queueStats,
			},
		},
	}
}

func render(c *cli.Context) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return cli.Exit(fmt.Sprintf("load config: %v", err), ctl.ExitUsage)
	}
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: slog.LevelWarn}))
	helper, err := ctl.NewInvoiceCLI(app.NewGenerator(cfg, logger, nil))
	if err != nil {
		return cli.Exit(err.Error(), ctl.ExitUsage)
	}
	code := helper.RenderCommand(c.Context, ctl.RenderOptions{
		Files:       c.Args().Slice(),
		OutDir:      c.String("out"),
		Concurrency: c.Int("concurrency"),
		JSONOutput:  c.Bool("json"),
		Stdout:      c.App.Writer,
		Stderr:      c.App.ErrWriter,
	})
	return exit(code)
}

func jobsCLI() (*ctl.JobsCLI, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	opt, err := cache.QueueOpt(cfg.RedisAddr)
	if err != nil {
		return nil, err
	}
	return ctl.NewJobsCLI(opt)
}

func enqueue(c *cli.Context) error {
	jobNumber := c.Args().First()
	if jobNumber == "" {
		return cli.Exit("enqueue: job number is required", ctl.ExitUsage)
	}
	helper, err := jobsCLI()
	if err != nil {
		return cli.Exit(err.Error(), ctl.ExitUsage)
	}
	defer helper.Close()
	info, err := helper.EnqueueInvoice(c.Context, jobNumber)
	if errors.Is(err, jobs.ErrAlreadyQueued) {
		_, _ = fmt.Fprintf(c.App.Writer, "%s already queued\n", jobNumber)
		return nil
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("enqueue: %v", err), ctl.ExitUsage)
	}
	_, _ = fmt.Fprintf(c.App.Writer, "queued %s as %s\n", jobNumber, info.ID)
	return nil
}

func queueStats(c *cli.Context) error {
	helper, err := jobsCLI()
	if err != nil {
		return cli.Exit(err.Error(), ctl.ExitUsage)
	}
	defer helper.Close()
	stats, err := helper.InspectQueue(c.Context)
	if err != nil {
		return cli.Exit(fmt.Sprintf("queue-stats: %v", err), ctl.ExitUsage)
	}
	return writeJSON(c.App.Writer, stats)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exit(code int) error {
	if code == ctl.ExitOK {
		return nil
	}
	return cli.Exit("", code)
}
