// Package catalog resolves the set of locally configured PIA connection
// profiles for a region and joins them against the remote server list to
// produce probe targets.
package catalog

import (
	"fmt"
	"strings"

	"github.com/dagrha/piactl/common"
)

// RegionFilter narrows which configured profiles are considered.
type RegionFilter int

const (
	// RegionUS keeps US servers only.
	RegionUS RegionFilter = iota
	// RegionAll keeps every PIA profile.
	RegionAll
	// RegionInternational keeps non-US servers only.
	RegionInternational
)

// ParseRegion parses the CLI region selector.
// Accepted values are "us", "all" and "int".
func ParseRegion(s string) (RegionFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "us", "":
		return RegionUS, nil
	case "all":
		return RegionAll, nil
	case "int":
		return RegionInternational, nil
	default:
		return RegionUS, fmt.Errorf("invalid region %q: must be one of us, all, int", s)
	}
}

// String returns the CLI spelling of the filter.
func (f RegionFilter) String() string {
	switch f {
	case RegionUS:
		return "us"
	case RegionAll:
		return "all"
	case RegionInternational:
		return "int"
	default:
		return "unknown"
	}
}

// Matches reports whether a configured profile name satisfies the filter.
//
// Matching is a plain substring test on the profile name. For
// RegionInternational a name is excluded when "US" appears anywhere in it,
// so a non-US server whose display name happens to contain "US" (for
// example "USA-South" style names) is excluded too. That ambiguity is part
// of the established naming contract and is covered by tests.
func (f RegionFilter) Matches(name string) bool {
	switch f {
	case RegionUS:
		return strings.Contains(name, common.ProfilePrefix+common.USMarker)
	case RegionAll:
		return strings.Contains(name, common.ProfilePrefix)
	case RegionInternational:
		return strings.Contains(name, common.ProfilePrefix) &&
			!strings.Contains(name, common.USMarker)
	default:
		return false
	}
}
