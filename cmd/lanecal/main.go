package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"lanecal/internal/capture"
	"lanecal/internal/config"
	"lanecal/internal/dateutil"
	applog "lanecal/internal/log"
	"lanecal/internal/source"
	"lanecal/internal/web"
)

// expandMonthsAhead bounds how far into the future recurring activities
// are materialized on each refresh.
const expandMonthsAhead = 3

type flags struct {
	configPath string
	listen     string
	cacheDir   string
	once       bool
	snapshot   string
}

func main() {
	fl := parseFlags()

	conf, err := config.Load(fl.configPath)
	if err != nil {
		applog.Error("failed to load config", err, "config_path", fl.configPath)
		os.Exit(1)
	}
	if fl.listen != "" {
		conf.Listen = fl.listen
	}
	applog.SetLevel(applog.ParseLevel(conf.LogLevel))

	applog.Info("lanecal starting",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"lane_cap", conf.LaneCap,
		"sources", len(conf.Sources),
		"once", fl.once,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		applog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	loc := resolveLocation(conf.Timezone)
	fetcher := source.NewFetcher(fl.cacheDir)
	server := web.NewServer(conf, fl.configPath)

	refresh := func() {
		// Read through the server so config updates apply on the next run.
		refreshActivities(ctx, server.Config(), fetcher, server, loc)
	}
	refresh()

	if fl.once {
		if fl.snapshot != "" {
			runSnapshot(ctx, conf, server, fl.snapshot)
		}
		applog.Info("single-shot run complete")
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, refresh); err != nil {
		applog.Error("invalid refresh cron expression", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	httpServer := &http.Server{
		Addr:    conf.Listen,
		Handler: server.Handler(),
	}
	go func() {
		applog.Info("http server listening", "listen", "http://"+conf.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error("http server failed", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		applog.Error("http shutdown failed", err)
	}
	applog.Info("lanecal exiting")
}

// refreshActivities fetches every configured feed, expands recurrences
// over the display window and swaps the server's activity snapshot.
func refreshActivities(ctx context.Context, conf *config.Config, fetcher *source.Fetcher, server *web.Server, loc *time.Location) {
	sources := make([]source.Source, 0, len(conf.Sources))
	for _, sc := range conf.Sources {
		if sc.URL == "" {
			continue
		}
		id := sc.ID
		if id == "" {
			id = sc.Name
		}
		sources = append(sources, source.Source{
			ID:       id,
			URL:      sc.URL,
			Category: sc.Category,
		})
	}
	if len(sources) == 0 {
		applog.Warn("no activity sources configured")
		return
	}

	results, errs := fetcher.FetchAll(ctx, sources)
	if len(errs) > 0 {
		applog.Warn("some feeds failed to fetch", "failed", len(errs), "fetched", len(results))
	}

	var events []source.Event
	for _, res := range results {
		parsed, err := source.Parse(res.Source, res.Body)
		if err != nil {
			applog.Error("feed parse failed", err, "id", res.Source.ID)
			continue
		}
		events = append(events, parsed...)
	}

	now := time.Now().In(loc)
	rangeStart := dateutil.TruncateToDay(now.AddDate(0, 0, -now.Day()+1))
	rangeEnd := rangeStart.AddDate(0, expandMonthsAhead+1, 0)

	activities, err := source.Expand(events, source.ExpandOptions{
		Location:   loc,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
	})
	if err != nil {
		applog.Error("recurrence expansion failed", err)
		return
	}

	server.SetActivities(activities)
}

// runSnapshot binds the month view briefly on the configured address and
// captures it to a PNG.
func runSnapshot(ctx context.Context, conf *config.Config, server *web.Server, outputPath string) {
	ln, err := net.Listen("tcp", conf.Listen)
	if err != nil {
		applog.Error("snapshot listener failed", err, "listen", conf.Listen)
		return
	}
	httpServer := &http.Server{Handler: server.Handler()}
	go func() { _ = httpServer.Serve(ln) }()
	defer httpServer.Close()

	err = capture.Snapshot(ctx, capture.Options{
		URL:        "http://" + ln.Addr().String() + "/calendar",
		OutputPath: outputPath,
	})
	if err != nil {
		applog.Error("snapshot failed", err, "output", outputPath)
		return
	}
	applog.Info("snapshot written", "output", outputPath)
}

func resolveLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		applog.Warn("unknown timezone, using local", "timezone", name)
		return time.Local
	}
	return loc
}

func parseFlags() flags {
	var fl flags
	flag.StringVar(&fl.configPath, "config", "/etc/lanecal/config.yaml", "Path to config file")
	flag.StringVar(&fl.listen, "listen", "", "HTTP listen address (overrides config)")
	flag.StringVar(&fl.cacheDir, "cache-dir", "", "Feed cache directory")
	flag.BoolVar(&fl.once, "once", false, "Refresh once and exit")
	flag.StringVar(&fl.snapshot, "snapshot", "", "With -once: write a PNG snapshot of the month view to this path")
	flag.Parse()
	return fl
}
