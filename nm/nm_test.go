package nm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dagrha/piactl/common"
)

func TestDirLister_ListProfiles(t *testing.T) {
	dir := t.TempDir()

	files := []string{
		"PIA - US East",
		"PIA - Germany.nmconnection",
		"Work VPN.nmconnection",
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("[connection]\n"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0700); err != nil {
		t.Fatal(err)
	}

	names, err := DirLister{Dir: dir}.ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles() error = %v", err)
	}

	if len(names) != 3 {
		t.Fatalf("got %d names, want 3 (directories skipped)", len(names))
	}

	want := map[string]bool{
		"PIA - US East": true,
		"PIA - Germany": true,
		"Work VPN":      true,
	}
	for _, name := range names {
		if !want[name] {
			t.Errorf("unexpected profile name %q", name)
		}
	}
}

func TestDirLister_MissingDir(t *testing.T) {
	_, err := DirLister{Dir: "/nonexistent/system-connections"}.ListProfiles()
	if err == nil {
		t.Error("ListProfiles() should fail for a missing directory")
	}
}

func TestParseActiveConnections(t *testing.T) {
	output := "PIA - US East:vpn\n" +
		"Wired connection 1:802-3-ethernet\n" +
		"PIA - Germany:vpn\n" +
		"Work VPN:vpn\n" +
		"\n"

	names := ParseActiveConnections(output)

	if len(names) != 2 {
		t.Fatalf("got %v, want two PIA vpn connections", names)
	}
	if names[0] != "PIA - US East" || names[1] != "PIA - Germany" {
		t.Errorf("names = %v", names)
	}
}

func TestParseActiveConnections_Empty(t *testing.T) {
	if names := ParseActiveConnections(""); len(names) != 0 {
		t.Errorf("ParseActiveConnections(\"\") = %v, want empty", names)
	}
}

func TestNewManager_NoNmcli(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := NewManager()
	if err != common.ErrNMUnavailable {
		t.Errorf("NewManager() error = %v, want ErrNMUnavailable", err)
	}
}
