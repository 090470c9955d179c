// Package nm integrates with NetworkManager: it enumerates configured
// connection profiles, queries active VPN connections over D-Bus, and
// brings connections up and down through nmcli.
package nm

import (
	"os"
	"strings"

	"github.com/dagrha/piactl/common"
)

// DirLister enumerates connection profile names by listing the
// NetworkManager system-connections directory. Reading the directory
// requires the same privileges NetworkManager grants it (root on most
// systems).
type DirLister struct {
	// Dir is the system-connections directory.
	Dir string
}

// ListProfiles implements catalog.Lister.
func (l DirLister) ListProfiles() ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, common.WrapError(err, "reading "+l.Dir)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// Newer NetworkManager stores keyfiles with an extension;
		// the profile name is the file name without it.
		name := strings.TrimSuffix(entry.Name(), ".nmconnection")
		names = append(names, name)
	}
	return names, nil
}
