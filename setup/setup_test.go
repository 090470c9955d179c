package setup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseOSRelease(t *testing.T) {
	data := `NAME="Fedora Linux"
VERSION="40 (Workstation Edition)"
ID=fedora
# a comment
PRETTY_NAME="Fedora Linux 40"
malformed line
`

	fields := ParseOSRelease(data)

	if fields["ID"] != "fedora" {
		t.Errorf(`fields["ID"] = %q, want "fedora"`, fields["ID"])
	}
	if fields["NAME"] != "Fedora Linux" {
		t.Errorf(`fields["NAME"] = %q, quotes should be stripped`, fields["NAME"])
	}
	if _, ok := fields["malformed line"]; ok {
		t.Error("lines without '=' should be skipped")
	}
}

func TestDistroFromOSRelease(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantID  string
		wantErr bool
	}{
		{"fedora", "ID=fedora\n", "fedora", false},
		{"ubuntu quoted", `ID="ubuntu"` + "\n", "ubuntu", false},
		{"uppercase", "ID=ARCH\n", "arch", false},
		{"unsupported", "ID=gentoo\n", "", true},
		{"missing id", "NAME=Something\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := distroFromOSRelease(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if d.ID != tt.wantID {
					t.Errorf("ID = %q, want %q", d.ID, tt.wantID)
				}
				if len(d.Packages) == 0 || len(d.InstallCmd) == 0 {
					t.Error("supported distro should carry packages and an install command")
				}
			}
		})
	}
}

func TestKeyfile_Render(t *testing.T) {
	kf := NewKeyfile(
		"US East",
		"us-east.privateinternetaccess.com",
		"p1234567",
		"hunter2",
		"/etc/openvpn/ca.rsa.2048.crt",
		1198,
		"SHA1",
		"AES-128-CBC",
		[]string{"209.222.18.222", "209.222.18.218"},
	)

	contents, err := kf.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, want := range []string{
		"id=PIA - US East",
		"type=vpn",
		"service-type=org.freedesktop.NetworkManager.openvpn",
		"username=p1234567",
		"remote=us-east.privateinternetaccess.com",
		"port=1198",
		"auth=SHA1",
		"cipher=AES-128-CBC",
		"password=hunter2",
		"dns=209.222.18.222;209.222.18.218;",
		"method=ignore",
	} {
		if !strings.Contains(contents, want) {
			t.Errorf("keyfile missing %q:\n%s", want, contents)
		}
	}

	if strings.Contains(contents, "uuid=\n") {
		t.Error("keyfile should carry a generated uuid")
	}
}

func TestKeyfile_UniqueUUIDs(t *testing.T) {
	a := NewKeyfile("US East", "r", "u", "p", "/ca", 1198, "SHA1", "AES-128-CBC", nil)
	b := NewKeyfile("US West", "r", "u", "p", "/ca", 1198, "SHA1", "AES-128-CBC", nil)

	if a.UUID == b.UUID {
		t.Error("each keyfile should get its own uuid")
	}
}

func TestKeyfile_Write(t *testing.T) {
	dir := t.TempDir()

	kf := NewKeyfile("US East", "remote", "u", "p", "/ca", 1198, "SHA1", "AES-128-CBC", nil)
	if err := kf.Write(dir); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	path := filepath.Join(dir, "PIA - US East")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("keyfile not written: %v", err)
	}

	if info.Mode().Perm() != 0600 {
		t.Errorf("keyfile mode = %o, want 0600", info.Mode().Perm())
	}
}

func TestDeleteOldKeyfiles(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"PIA - US East", "PIA - Germany", "Work VPN"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := DeleteOldKeyfiles(dir)
	if err != nil {
		t.Fatalf("DeleteOldKeyfiles() error = %v", err)
	}

	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	if _, err := os.Stat(filepath.Join(dir, "Work VPN")); err != nil {
		t.Error("non-PIA keyfiles must be left alone")
	}
}
