package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dagrha/piactl/catalog"
	"github.com/dagrha/piactl/common"
	"github.com/dagrha/piactl/history"
	"github.com/dagrha/piactl/keyring"
	"github.com/dagrha/piactl/probe"
	"github.com/dagrha/piactl/setup"
	"github.com/dagrha/piactl/ui"
)

// Ping probes every configured profile in the region and prints a latency
// table sorted ascending.
func (a *App) Ping(ctx context.Context, filter catalog.RegionFilter) error {
	cat, result, err := a.probeRegion(ctx, filter)
	if err != nil {
		return err
	}
	if result.Len() == 0 {
		return common.ErrNoReachableServer
	}

	fmt.Fprint(a.out, probe.Render(result, cat))
	return nil
}

// Fastest probes the region and connects to the lowest-latency profile.
func (a *App) Fastest(ctx context.Context, filter catalog.RegionFilter) error {
	cat, result, err := a.probeRegion(ctx, filter)
	if err != nil {
		return err
	}

	profile, err := probe.Fastest(result, cat)
	if err != nil {
		return err
	}
	return a.switchConnection(ctx, profile)
}

// Shuffle connects to a randomly chosen configured profile in the region.
// No probing happens; the point is an arbitrary exit, not a fast one. The
// currently active profile is excluded when any alternative exists.
func (a *App) Shuffle(ctx context.Context, filter catalog.RegionFilter) error {
	profiles, err := a.service.ListConfiguredProfiles(filter)
	if err != nil {
		return err
	}

	manager, err := a.nmManager()
	if err != nil {
		return err
	}
	if active, err := manager.ActivePIAConnections(ctx); err == nil {
		if others := excludeProfiles(profiles, active); len(others) > 0 {
			profiles = others
		}
	}

	return a.switchConnection(ctx, pickRandom(profiles))
}

// excludeProfiles returns the profiles not present in the skip list.
func excludeProfiles(profiles, skip []string) []string {
	kept := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if !common.StringInSlice(p, skip) {
			kept = append(kept, p)
		}
	}
	return kept
}

// Choose probes the region and opens an interactive picker over the
// results. Unreachable servers stay listed, marked as such.
func (a *App) Choose(ctx context.Context, filter catalog.RegionFilter) error {
	cat, result, err := a.probeRegion(ctx, filter)
	if err != nil {
		return err
	}

	choices := buildChoices(cat, result)
	chosen, ok, err := ui.Pick(choices)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "No server selected.")
		return nil
	}
	return a.switchConnection(ctx, chosen.Profile)
}

// buildChoices orders the picker entries by measured latency, fastest
// first, with unreachable servers trailing in catalog order.
func buildChoices(cat *catalog.Catalog, result *probe.Result) []ui.Choice {
	choices := make([]ui.Choice, 0, cat.Len())
	for _, entry := range cat.Entries() {
		c := ui.Choice{Profile: entry.Profile, Target: entry.Target}
		if ms, ok := result.Latency(entry.Target); ok {
			c.Ping = ms
			c.HasPing = true
		}
		choices = append(choices, c)
	}

	sort.SliceStable(choices, func(i, j int) bool {
		if choices[i].HasPing != choices[j].HasPing {
			return choices[i].HasPing
		}
		return choices[i].Ping < choices[j].Ping
	})
	return choices
}

// Disconnect brings down every active PIA connection.
func (a *App) Disconnect(ctx context.Context) error {
	manager, err := a.nmManager()
	if err != nil {
		return err
	}

	dropped, err := manager.DisconnectAll(ctx)
	if err != nil {
		return err
	}
	if len(dropped) == 0 {
		fmt.Fprintln(a.out, "No active PIA connections.")
		return common.ErrNotConnected
	}
	for _, name := range dropped {
		fmt.Fprintf(a.out, "Disconnected %s\n", name)
	}
	return nil
}

// Init performs first-time setup: installs required packages, downloads
// the CA certificate, generates one NetworkManager keyfile per server,
// and restarts NetworkManager. Requires root.
func (a *App) Init(ctx context.Context) error {
	creds, err := a.obtainCredentials()
	if err != nil {
		return err
	}

	written, err := setup.Run(ctx, setup.Options{
		Config:      a.cfg,
		Credentials: creds,
		Fetcher:     catalog.NewHTTPFetcher(a.cfg.ServerListURL),
		ConfirmInstall: func(pkg string) bool {
			return confirm(fmt.Sprintf("Install %s?", pkg))
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote %d connection profiles to %s\n", written, a.cfg.ConnectionsDir)

	manager, err := a.nmManager()
	if err != nil {
		return err
	}
	if err := manager.Restart(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Setup complete. Run piactl -fastest to connect.")
	return nil
}

// obtainCredentials reuses stored credentials when present, otherwise
// prompts and offers to store them.
func (a *App) obtainCredentials() (setup.Credentials, error) {
	if account, err := keyring.GetAccount(); err == nil {
		fmt.Fprintf(a.out, "Using stored credentials for %s.\n", account.Username)
		return setup.Credentials{Username: account.Username, Password: account.Password}, nil
	} else if !errors.Is(err, keyring.ErrNotFound) {
		common.LogWarn("Credential store unreadable: %v", err)
	}

	creds, err := setup.PromptCredentials()
	if err != nil {
		return setup.Credentials{}, err
	}

	if confirm("Store credentials in the system keyring?") {
		account := keyring.Account{Username: creds.Username, Password: creds.Password}
		if err := keyring.StoreAccount(account); err != nil {
			common.LogWarn("Failed to store credentials: %v", err)
		}
	}
	return creds, nil
}

// History prints recorded probe results: the most recent rows, or with
// best set, the lowest latency ever seen per profile.
func (a *App) History(ctx context.Context, limit int, best bool) error {
	store, err := history.Open()
	if err != nil {
		return err
	}
	defer store.Close()

	var entries []history.Entry
	if best {
		entries, err = store.BestPerProfile(ctx)
	} else {
		entries, err = store.Recent(ctx, limit)
	}
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No probe history recorded yet.")
		return nil
	}

	if best {
		fmt.Fprint(a.out, renderBest(entries))
	} else {
		fmt.Fprint(a.out, renderHistory(entries))
	}
	return nil
}

func renderHistory(entries []history.Entry) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tNAME\tTARGET\tPING (MS)")
	fmt.Fprintln(w, "----\t----\t------\t---------")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n",
			e.ProbedAt.Local().Format("2006-01-02 15:04"),
			catalog.DisplayName(e.Profile), e.Target, e.LatencyMS)
	}
	w.Flush()
	return sb.String()
}

func renderBest(entries []history.Entry) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTARGET\tBEST (MS)")
	fmt.Fprintln(w, "----\t------\t---------")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%.2f\n",
			catalog.DisplayName(e.Profile), e.Target, e.LatencyMS)
	}
	w.Flush()
	return sb.String()
}

// ForgetCredentials removes the PIA account from the credential store so
// the next -init prompts again.
func (a *App) ForgetCredentials() error {
	if !keyring.HasAccount() {
		fmt.Fprintln(a.out, "No stored credentials.")
		return nil
	}
	if err := keyring.DeleteAccount(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Stored credentials removed.")
	return nil
}

// Status prints the currently active PIA connections, if any.
func (a *App) Status(ctx context.Context) error {
	manager, err := a.nmManager()
	if err != nil {
		return err
	}

	active, err := manager.ActivePIAConnections(ctx)
	if err != nil {
		return err
	}
	if len(active) == 0 {
		fmt.Fprintln(a.out, "Not connected.")
		return nil
	}
	for _, name := range active {
		fmt.Fprintf(a.out, "Connected: %s\n", name)
	}
	return nil
}
