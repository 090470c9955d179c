// Package cli implements the piactl commands, wiring the catalog, probe,
// NetworkManager, and history layers together behind the flag surface.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/dagrha/piactl/catalog"
	"github.com/dagrha/piactl/common"
	"github.com/dagrha/piactl/config"
	"github.com/dagrha/piactl/history"
	"github.com/dagrha/piactl/nm"
	"github.com/dagrha/piactl/probe"
)

// App holds the shared dependencies of every command.
type App struct {
	cfg     *config.Config
	service *catalog.Service
	engine  *probe.Engine

	// manager is created on first use so read-only commands work on
	// hosts without nmcli.
	manager *nm.Manager

	// out receives command output; stdout in production.
	out io.Writer
}

// NewApp wires the command dependencies from the loaded configuration.
func NewApp(cfg *config.Config) *App {
	lister := &nm.DirLister{Dir: cfg.ConnectionsDir}
	fetcher := catalog.NewHTTPFetcher(cfg.ServerListURL)
	prober := probe.NewPingProber(cfg.ProbeTimeout())

	return &App{
		cfg:     cfg,
		service: catalog.NewService(lister, fetcher),
		engine:  probe.NewEngine(prober, cfg.EchoCount, cfg.ProbeConcurrency),
		out:     os.Stdout,
	}
}

func (a *App) nmManager() (*nm.Manager, error) {
	if a.manager != nil {
		return a.manager, nil
	}
	manager, err := nm.NewManager()
	if err != nil {
		return nil, err
	}
	a.manager = manager
	return manager, nil
}

// probeRegion builds the catalog for the filter and probes every target.
func (a *App) probeRegion(ctx context.Context, filter catalog.RegionFilter) (*catalog.Catalog, *probe.Result, error) {
	cat, err := a.service.Build(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	// Profiles matched the filter but none resolved against the server
	// list: probing nothing can reach nothing.
	if cat.Len() == 0 {
		return nil, nil, common.ErrNoReachableServer
	}

	fmt.Fprintf(a.out, "Pinging %d servers...\n", cat.Len())
	result := a.engine.ProbeAll(ctx, cat)
	a.recordHistory(ctx, result, cat)
	return cat, result, nil
}

// recordHistory saves the run when history is enabled. Failures are
// logged, never fatal; history is a convenience.
func (a *App) recordHistory(ctx context.Context, result *probe.Result, cat *catalog.Catalog) {
	if !a.cfg.HistoryRecording() || result.Len() == 0 {
		return
	}

	store, err := history.Open()
	if err != nil {
		common.LogWarn("History unavailable: %v", err)
		return
	}
	defer store.Close()

	if err := store.RecordRun(ctx, result, cat); err != nil {
		common.LogWarn("Failed to record probe history: %v", err)
	}
}

// switchConnection brings down any active PIA connections and brings up
// the named profile.
func (a *App) switchConnection(ctx context.Context, profile string) error {
	manager, err := a.nmManager()
	if err != nil {
		return err
	}

	dropped, err := manager.DisconnectAll(ctx)
	if err != nil {
		return err
	}
	for _, name := range dropped {
		fmt.Fprintf(a.out, "Disconnected %s\n", name)
	}

	activateCtx, cancel := context.WithTimeout(ctx, common.ActivateTimeout)
	defer cancel()
	if err := manager.Activate(activateCtx, profile); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Connected to %s\n", profile)
	return nil
}

// pickRandom selects one profile at random.
func pickRandom(profiles []string) string {
	return profiles[rand.Intn(len(profiles))]
}

// confirm asks a yes/no question on stdin. Empty input means yes.
func confirm(question string) bool {
	fmt.Printf("%s (y/n): ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "" || answer == "y" || answer == "yes"
}
