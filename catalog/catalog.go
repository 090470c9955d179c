package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/dagrha/piactl/common"
)

// Lister enumerates the locally configured connection profile names.
// The production implementation reads the NetworkManager
// system-connections directory.
type Lister interface {
	ListProfiles() ([]string, error)
}

// Entry associates one configured profile with its probe target.
type Entry struct {
	// Profile is the full connection profile name, e.g. "PIA - US East".
	Profile string
	// Target is the network address probed for latency.
	Target string
}

// Catalog is the per-invocation join of configured profiles against the
// server list. Entry order is preserved so downstream tie-breaks are
// deterministic.
type Catalog struct {
	entries  []Entry
	byTarget map[string]string
}

// Add appends an entry. The first profile seen for a target wins.
func (c *Catalog) Add(profile, target string) {
	if c.byTarget == nil {
		c.byTarget = make(map[string]string)
	}
	if _, dup := c.byTarget[target]; dup {
		return
	}
	c.byTarget[target] = profile
	c.entries = append(c.entries, Entry{Profile: profile, Target: target})
}

// Entries returns the entries in insertion order.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Targets returns every probe target in insertion order.
func (c *Catalog) Targets() []string {
	targets := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		targets = append(targets, e.Target)
	}
	return targets
}

// ProfileFor returns the profile name associated with a target.
func (c *Catalog) ProfileFor(target string) (string, bool) {
	profile, ok := c.byTarget[target]
	return profile, ok
}

// Service builds catalogs from a profile lister and a server-list fetcher.
type Service struct {
	lister  Lister
	fetcher Fetcher
}

// NewService creates a catalog service.
func NewService(lister Lister, fetcher Fetcher) *Service {
	return &Service{lister: lister, fetcher: fetcher}
}

// ListConfiguredProfiles returns the configured profile names matching the
// filter, sorted for stable output. Returns common.ErrNoConfiguredProfiles
// when nothing matches.
func (s *Service) ListConfiguredProfiles(filter RegionFilter) ([]string, error) {
	names, err := s.lister.ListProfiles()
	if err != nil {
		return nil, common.WrapError(err, "listing configured profiles")
	}

	matched := make([]string, 0, len(names))
	for _, name := range names {
		if filter.Matches(name) {
			matched = append(matched, name)
		}
	}
	if len(matched) == 0 {
		return nil, common.ErrNoConfiguredProfiles
	}

	sort.Strings(matched)
	return matched, nil
}

// ResolveTargets joins configured profile names against the server list.
// Profiles without a matching server record are dropped silently; the
// server list is third-party data and not every profile is guaranteed a
// counterpart.
func (s *Service) ResolveTargets(ctx context.Context, profiles []string) (*Catalog, error) {
	records, err := s.fetcher.FetchServers(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]ServerRecord, len(records))
	for _, rec := range records {
		byName[rec.Name] = rec
	}

	cat := &Catalog{}
	for _, profile := range profiles {
		rec, ok := byName[DisplayName(profile)]
		if !ok {
			common.LogDebug("No server record for profile %q", profile)
			continue
		}
		cat.Add(profile, rec.Target())
	}
	return cat, nil
}

// Build lists the configured profiles for the filter and resolves their
// probe targets in one step.
func (s *Service) Build(ctx context.Context, filter RegionFilter) (*Catalog, error) {
	profiles, err := s.ListConfiguredProfiles(filter)
	if err != nil {
		return nil, err
	}
	return s.ResolveTargets(ctx, profiles)
}

// DisplayName strips the provider prefix (and anything before the last
// " - " separator) from a profile name, leaving the server display name
// used as the join key against the server list.
func DisplayName(profile string) string {
	if i := strings.LastIndex(profile, " - "); i >= 0 {
		return profile[i+3:]
	}
	return profile
}
