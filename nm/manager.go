package nm

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/dagrha/piactl/common"
)

const (
	nmDest = "org.freedesktop.NetworkManager"
	nmPath = "/org/freedesktop/NetworkManager"

	activeConnsProp = "org.freedesktop.NetworkManager.ActiveConnections"
	activeIDProp    = "org.freedesktop.NetworkManager.Connection.Active.Id"
	activeTypeProp  = "org.freedesktop.NetworkManager.Connection.Active.Type"
)

// Manager drives NetworkManager. Activation goes through nmcli;
// active-connection queries prefer the D-Bus API with an nmcli fallback.
type Manager struct {
	systemBus func() (*dbus.Conn, error)
}

// NewManager verifies that nmcli is available and returns a manager.
func NewManager() (*Manager, error) {
	if _, err := exec.LookPath("nmcli"); err != nil {
		return nil, common.ErrNMUnavailable
	}
	return &Manager{systemBus: dbus.SystemBus}, nil
}

// Activate requests NetworkManager bring the named connection up.
// Fire-and-forget: nmcli's exit status reports whether the request was
// accepted, not whether the tunnel stays healthy.
func (m *Manager) Activate(ctx context.Context, name string) error {
	common.LogInfo("Activating %s", name)
	cmd := exec.CommandContext(ctx, "nmcli", "con", "up", "id", name)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("nmcli con up %q: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Deactivate requests NetworkManager bring the named connection down.
func (m *Manager) Deactivate(ctx context.Context, name string) error {
	common.LogInfo("Disconnecting %s", name)
	cmd := exec.CommandContext(ctx, "nmcli", "con", "down", "id", name)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("nmcli con down %q: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// ActivePIAConnections returns the names of currently active PIA VPN
// connections. The D-Bus API is authoritative; when the system bus is
// unavailable the nmcli terse output is parsed instead.
func (m *Manager) ActivePIAConnections(ctx context.Context) ([]string, error) {
	names, err := m.activeViaDBus(ctx)
	if err == nil {
		return names, nil
	}
	common.LogDebug("D-Bus query failed (%v), falling back to nmcli", err)
	return m.activeViaNmcli(ctx)
}

func (m *Manager) activeViaDBus(ctx context.Context) ([]string, error) {
	conn, err := m.systemBus()
	if err != nil {
		return nil, common.WrapError(common.ErrNMUnavailable, err.Error())
	}

	obj := conn.Object(nmDest, dbus.ObjectPath(nmPath))
	v, err := obj.GetProperty(activeConnsProp)
	if err != nil {
		return nil, common.WrapError(common.ErrNMUnavailable, err.Error())
	}

	paths, ok := v.Value().([]dbus.ObjectPath)
	if !ok {
		return nil, fmt.Errorf("unexpected ActiveConnections type %T", v.Value())
	}

	var names []string
	for _, path := range paths {
		ac := conn.Object(nmDest, path)

		typeV, err := ac.GetProperty(activeTypeProp)
		if err != nil {
			continue
		}
		if connType, _ := typeV.Value().(string); connType != "vpn" {
			continue
		}

		idV, err := ac.GetProperty(activeIDProp)
		if err != nil {
			continue
		}
		if id, _ := idV.Value().(string); strings.HasPrefix(id, "PIA") {
			names = append(names, id)
		}
	}
	return names, nil
}

func (m *Manager) activeViaNmcli(ctx context.Context) ([]string, error) {
	cmd := exec.CommandContext(ctx, "nmcli", "-t", "-f", "NAME,TYPE", "con", "show", "--active")
	output, err := cmd.Output()
	if err != nil {
		return nil, common.WrapError(common.ErrNMUnavailable, err.Error())
	}
	return ParseActiveConnections(string(output)), nil
}

// ParseActiveConnections extracts active PIA VPN connection names from
// `nmcli -t -f NAME,TYPE con show --active` output.
func ParseActiveConnections(output string) []string {
	var names []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// Terse format separates fields with a colon; the name itself
		// cannot contain one under the PIA naming convention.
		i := strings.LastIndexByte(line, ':')
		if i < 0 {
			continue
		}
		name, connType := line[:i], line[i+1:]
		if connType == "vpn" && strings.HasPrefix(name, "PIA") {
			names = append(names, name)
		}
	}
	return names
}

// DisconnectAll brings down every active PIA connection and returns the
// names it disconnected.
func (m *Manager) DisconnectAll(ctx context.Context) ([]string, error) {
	active, err := m.ActivePIAConnections(ctx)
	if err != nil {
		return nil, err
	}

	var disconnected []string
	for _, name := range active {
		if err := m.Deactivate(ctx, name); err != nil {
			common.LogWarn("Failed to disconnect %s: %v", name, err)
			continue
		}
		disconnected = append(disconnected, name)
	}
	return disconnected, nil
}

// Restart restarts the NetworkManager daemon so freshly written keyfiles
// are picked up. Uses systemctl on systemd hosts, rc-service otherwise.
func (m *Manager) Restart(ctx context.Context) error {
	common.LogInfo("Restarting NetworkManager")
	if common.FileExists("/bin/systemctl") || common.FileExists("/usr/bin/systemctl") {
		cmd := exec.CommandContext(ctx, "systemctl", "restart", "NetworkManager.service")
		if output, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("systemctl restart NetworkManager: %w: %s", err, strings.TrimSpace(string(output)))
		}
		return nil
	}
	cmd := exec.CommandContext(ctx, "rc-service", "NetworkManager", "restart")
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("rc-service NetworkManager restart: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
