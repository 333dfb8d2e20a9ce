package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tickrun/internal/job"
	"tickrun/internal/sched"
)

type flags struct {
	config   string
	interval time.Duration
	runFor   time.Duration
	force    bool
	csv      string
	verbose  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "ticksched",
		Short: "Run a counter job periodically until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := sched.Load(f.config)
			if err != nil {
				return err
			}
			merge(&cfg, cmd, f)
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&f.config, "config", "c", "config.yml", "config file (.yml or .toml)")
	cmd.Flags().DurationVarP(&f.interval, "interval", "i", 0, "tick interval (overrides config)")
	cmd.Flags().DurationVar(&f.runFor, "run-for", 0, "stop after this long (0 = until interrupted)")
	cmd.Flags().BoolVar(&f.force, "force", false, "cancel the in-flight run on stop")
	cmd.Flags().StringVar(&f.csv, "csv", "", "write events to this csv file")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")

	return cmd
}

// merge lets explicitly set flags win over the config file.
func merge(cfg *sched.Config, cmd *cobra.Command, f *flags) {
	changed := func(name string) bool { return cmd.Flags().Changed(name) }

	if changed("interval") && f.interval > 0 {
		cfg.IntervalMS = int(f.interval / time.Millisecond)
	}
	if changed("run-for") {
		cfg.RunForMS = int(f.runFor / time.Millisecond)
	}
	cfg.ForceStop = lo.Ternary(changed("force"), f.force, cfg.ForceStop)
	cfg.CSVPath = lo.Ternary(f.csv != "", f.csv, cfg.CSVPath)
	cfg.LogLevel = lo.Ternary(f.verbose, "debug", cfg.LogLevel)
}

// run drives one worker cycle and writes the recorded event history to out
// once the worker has stopped.
func run(ctx context.Context, cfg sched.Config, out io.Writer) (err error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.Infof("loaded config: %+v", cfg)

	rec := sched.NewRecorder(cfg.HistorySize)
	if cfg.CSVPath != "" {
		if err := rec.EnableCSV(cfg.CSVPath); err != nil {
			return err
		}
	}
	defer func() {
		if cerr := rec.Close(); err == nil {
			err = cerr
		}
	}()

	counter := job.NewCounter(func(n int64) { fmt.Println(n) })

	opts := append(cfg.Options(),
		sched.WithCompletion(func() error {
			fmt.Println("executing before stop")
			return nil
		}),
		sched.WithObserver(func(ev sched.Event) {
			rec.Observe(ev)
			printEvent(ev)
		}),
	)
	worker := sched.NewWorker(counter.Work, opts...)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if d := cfg.RunFor(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	worker.Start()
	<-ctx.Done()

	err = worker.Stop(cfg.ForceStop)
	st := worker.Stats()
	log.WithFields(log.Fields{
		"runs":     st.Runs,
		"failures": st.Failures,
		"count":    counter.Value(),
	}).Info("worker finished")
	printHistory(out, worker.Name(), rec.Recent())

	// a forced stop reports cancellation by design
	if cfg.ForceStop && errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		if last, ok := lastFailure(rec.Recent()); ok {
			log.WithError(last.Err).WithField("tick", last.Tick).Error("last recorded failure")
		}
	}
	return err
}

// printHistory writes the events kept by the recorder, oldest first.
func printHistory(out io.Writer, name string, events []sched.Event) {
	fmt.Fprintf(out, "last %d events of %s:\n", len(events), name)
	for _, ev := range events {
		fmt.Fprintln(out, "  "+formatEvent(ev))
	}
}

func lastFailure(events []sched.Event) (sched.Event, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Err != nil {
			return events[i], true
		}
	}
	return sched.Event{}, false
}

func printEvent(ev sched.Event) {
	// ticks and runs are echoed by the counter itself
	if ev.Kind == sched.EventTick || ev.Kind == sched.EventRun {
		return
	}

	paint := color.CyanString
	switch ev.Kind {
	case sched.EventFail, sched.EventCancel:
		paint = color.RedString
	case sched.EventComplete:
		paint = color.GreenString
	}

	fmt.Println(paint("%s", formatEvent(ev)))
}

func formatEvent(ev sched.Event) string {
	msg := fmt.Sprintf("%s = Tick: %07d [%-8s] => %s",
		ev.Time.Format("Jan 02 15:04:05.000"), ev.Tick, ev.Kind, ev.Worker)
	if ev.Err != nil {
		msg += ": " + ev.Err.Error()
	}
	return msg
}
