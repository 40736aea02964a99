// Command rdvsrv runs the streaming rendezvous relay: it loads an optional
// config file given as the first positional argument, starts the
// housekeeping scheduler and expiration sweeper, then serves HTTP until
// killed -- the same load-then-init-then-serve shape as the teacher's
// cmd/authn daemon, generalized from authn's JSON jsp.LoadMeta to this
// repo's own key=value cfg.Load.
package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aistorelabs/rendezvous/cfg"
	"github.com/aistorelabs/rendezvous/cmn/cos"
	"github.com/aistorelabs/rendezvous/cmn/nlog"
	"github.com/aistorelabs/rendezvous/hk"
	"github.com/aistorelabs/rendezvous/rdv"
	"github.com/aistorelabs/rendezvous/rdvsrv"
	"github.com/aistorelabs/rendezvous/stats"
)

func main() {
	var configPath string
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	installSignalHandler()

	c, err := cfg.Load(configPath)
	if err != nil {
		cos.ExitLogf("Failed to load configuration from %q: %v", configPath, err)
	}

	registry := rdv.NewRegistry(c.RegistryShards, c.MaxQueueDepth)
	tracker := stats.New()

	go hk.DefaultHK.Run()
	hk.WaitStarted()
	rdv.RegisterSweeper(registry, time.Duration(c.TimeoutScanIntervalS)*time.Second, tracker)

	srv := rdvsrv.New(c, registry, tracker)
	nlog.Infof("rdvsrv listening on %s (metrics on %s)", c.Bind, c.MetricsBind)

	httpSrv := &http.Server{Addr: c.Bind, Handler: srv}
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		cos.ExitLogf("server failed: %v", err)
	}
}

func installSignalHandler() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		nlog.Infof("received shutdown signal, exiting")
		nlog.Flush(true)
		os.Exit(0)
	}()
}
