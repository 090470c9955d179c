// Package setup performs the one-time configuration of PIA routes:
// distribution detection, package installation, credential collection,
// certificate download, and NetworkManager keyfile generation.
package setup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dagrha/piactl/common"
)

// Distro describes the detected Linux distribution and how to install the
// NetworkManager OpenVPN plugin on it.
type Distro struct {
	// ID is the os-release ID, e.g. "fedora".
	ID string
	// Packages are the packages required for OpenVPN keyfile support.
	Packages []string
	// InstallCmd is the package-manager invocation, one package appended
	// per call.
	InstallCmd []string
}

// packageTable maps os-release IDs to their required packages and install
// commands.
var packageTable = map[string]struct {
	packages   []string
	installCmd []string
}{
	"fedora": {
		packages:   []string{"NetworkManager-openvpn", "NetworkManager-openvpn-gnome"},
		installCmd: []string{"dnf", "install", "-y"},
	},
	"ubuntu": {
		packages:   []string{"network-manager-openvpn", "network-manager-openvpn-gnome"},
		installCmd: []string{"apt-get", "install", "-y"},
	},
	"debian": {
		packages:   []string{"network-manager-openvpn", "network-manager-openvpn-gnome"},
		installCmd: []string{"apt-get", "install", "-y"},
	},
	"linuxmint": {
		packages:   []string{"network-manager-openvpn", "network-manager-openvpn-gnome"},
		installCmd: []string{"apt-get", "install", "-y"},
	},
	"arch": {
		packages:   []string{"networkmanager-openvpn"},
		installCmd: []string{"pacman", "-S", "--noconfirm"},
	},
	"manjaro": {
		packages:   []string{"networkmanager-openvpn"},
		installCmd: []string{"pacman", "-S", "--noconfirm"},
	},
	"opensuse": {
		packages:   []string{"NetworkManager-openvpn"},
		installCmd: []string{"zypper", "install", "-y"},
	},
}

// DetectDistro identifies the running distribution from /etc/os-release.
// Returns common.ErrDistroUnsupported when the distribution has no entry
// in the package table.
func DetectDistro() (*Distro, error) {
	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return nil, common.WrapError(err, "reading /etc/os-release")
	}
	return distroFromOSRelease(string(data))
}

func distroFromOSRelease(data string) (*Distro, error) {
	fields := ParseOSRelease(data)
	id := strings.ToLower(fields["ID"])
	if id == "" {
		return nil, common.WrapError(common.ErrDistroUnsupported, "os-release has no ID field")
	}

	entry, ok := packageTable[id]
	if !ok {
		return nil, common.WrapError(common.ErrDistroUnsupported, id)
	}

	return &Distro{
		ID:         id,
		Packages:   entry.packages,
		InstallCmd: entry.installCmd,
	}, nil
}

// ParseOSRelease parses the KEY=value lines of an os-release file.
// Quotes around values are stripped.
func ParseOSRelease(data string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[key] = strings.Trim(value, `"`)
	}
	return fields
}

// InstallPackages installs the required packages, asking confirm before
// each one. A declined package aborts the installation.
func (d *Distro) InstallPackages(ctx context.Context, confirm func(pkg string) bool) error {
	for _, pkg := range d.Packages {
		if !confirm(pkg) {
			return fmt.Errorf("%s is required, installation declined", pkg)
		}

		args := append(append([]string{}, d.InstallCmd[1:]...), pkg)
		cmd := exec.CommandContext(ctx, d.InstallCmd[0], args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("installing %s: %w", pkg, err)
		}
		common.LogInfo("Installed %s", pkg)
	}
	return nil
}

// CheckRoot verifies the process runs with root privileges, which are
// needed to write under /etc and restart NetworkManager.
func CheckRoot() error {
	if os.Geteuid() != 0 {
		return common.ErrRootRequired
	}
	return nil
}
