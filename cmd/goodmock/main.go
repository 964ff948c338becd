// Command goodmock runs the HTTP mock server engine: stubbing,
// verification, forwarding, proxying (including CONNECT tunnels) and
// record/playback, all driven through the admin surface under
// /__httpmock__/. Grounded on the teacher's root main.go (flag parsing,
// banner print, fasthttp.ListenAndServe bootstrap), generalized from the
// standard library flag package to github.com/spf13/cobra per the example
// pack's CLI convention.
package main

import (
	"fmt"
	"os"

	"github.com/goodmock/goodmock/internal/admin"
	"github.com/goodmock/goodmock/internal/applog"
	"github.com/goodmock/goodmock/internal/config"
	"github.com/goodmock/goodmock/internal/dispatch"
	"github.com/goodmock/goodmock/internal/staticload"
	"github.com/goodmock/goodmock/internal/store"
	"github.com/goodmock/goodmock/internal/upstream"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
)

func main() {
	cfg := config.Default()

	root := &cobra.Command{
		Use:   "goodmock",
		Short: "HTTP mock server engine: stub, verify, forward, proxy, record/playback",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}

	root.Flags().Uint16Var(&cfg.Port, "port", cfg.Port, "port to listen on")
	root.Flags().BoolVar(&cfg.Expose, "expose", cfg.Expose, "bind 0.0.0.0 instead of 127.0.0.1")
	root.Flags().StringVar(&cfg.StaticMockDir, "static-mock-dir", cfg.StaticMockDir, "directory of *.yaml/*.yml static mock definitions, loaded at startup")
	root.Flags().BoolVar(&cfg.DisableAccessLog, "disable-access-log", cfg.DisableAccessLog, "suppress the per-request access log line")
	root.Flags().IntVar(&cfg.HistoryBound, "history-bound", cfg.HistoryBound, "maximum number of requests retained in history")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	if port, ok := config.EnvPort(); ok {
		cfg.Port = uint16(port)
	}
	if bound, ok := config.EnvHistoryBound(); ok {
		cfg.HistoryBound = bound
	}

	st := store.New(cfg.HistoryBound)
	log := applog.New()
	log.AccessDisabled = cfg.DisableAccessLog

	if cfg.StaticMockDir != "" {
		n, err := staticload.Load(cfg.StaticMockDir, st)
		if err != nil {
			return fmt.Errorf("loading static mocks: %w", err)
		}
		log.Infof("installed %d static mocks from %s", n, cfg.StaticMockDir)
	}

	d := &dispatch.Dispatcher{Store: st, Upstream: upstream.New(), Log: log}
	adm := admin.New(st)

	addr := fmt.Sprintf("%s:%d", cfg.BindHost(), cfg.Port)

	fmt.Println("┌──────────────────────────────────────────────────────────────────────────────┐")
	fmt.Println("|                                                                              |")
	fmt.Printf("|   goodmock - HTTP mock server engine (fasthttp)                             |\n")
	fmt.Printf("|   Address: %-66s|\n", addr)
	fmt.Printf("|   Admin:   %-66s|\n", admin.Prefix)
	fmt.Printf("|   History: %-66d|\n", cfg.HistoryBound)
	fmt.Println("|                                                                              |")
	fmt.Println("└──────────────────────────────────────────────────────────────────────────────┘")

	return fasthttp.ListenAndServe(addr, func(rc *fasthttp.RequestCtx) {
		if admin.Matches(rc) {
			adm.Handle(rc)
			return
		}
		d.Handle(rc)
	})
}
