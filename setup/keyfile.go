package setup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/google/uuid"

	"github.com/dagrha/piactl/common"
)

// keyfileTemplate is the NetworkManager keyfile written for each PIA
// server. The layout matches what nm-connection-editor produces for an
// OpenVPN connection with stored secrets.
var keyfileTemplate = template.Must(template.New("keyfile").Parse(`[connection]
id={{.ID}}
uuid={{.UUID}}
type=vpn
autoconnect=false

[vpn]
service-type=org.freedesktop.NetworkManager.openvpn
username={{.Username}}
comp-lzo=yes
remote={{.Remote}}
connection-type=password
password-flags=0
ca={{.CAPath}}
port={{.Port}}
auth={{.Auth}}
cipher={{.Cipher}}

[vpn-secrets]
password={{.Password}}

[ipv4]
method=auto
dns={{.DNS}}
ignore-auto-dns=true

[ipv6]
method=ignore
`))

// Keyfile holds the values rendered into one connection keyfile.
type Keyfile struct {
	// ID is the connection profile name, e.g. "PIA - US East".
	ID       string
	UUID     string
	Username string
	Password string
	// Remote is the OpenVPN server hostname.
	Remote string
	CAPath string
	Port   int
	Auth   string
	Cipher string
	// DNS is the semicolon-joined resolver list, trailing separator
	// included, as NetworkManager expects.
	DNS string
}

// NewKeyfile builds a keyfile for a server with a fresh connection UUID.
func NewKeyfile(serverName, remote, username, password, caPath string, port int, auth, cipher string, dnsServers []string) Keyfile {
	return Keyfile{
		ID:       common.ProfilePrefix + serverName,
		UUID:     uuid.NewString(),
		Username: username,
		Password: password,
		Remote:   remote,
		CAPath:   caPath,
		Port:     port,
		Auth:     auth,
		Cipher:   cipher,
		DNS:      joinDNS(dnsServers),
	}
}

func joinDNS(servers []string) string {
	if len(servers) == 0 {
		return ""
	}
	return strings.Join(servers, ";") + ";"
}

// Render produces the keyfile contents.
func (k Keyfile) Render() (string, error) {
	var sb strings.Builder
	if err := keyfileTemplate.Execute(&sb, k); err != nil {
		return "", common.WrapError(err, "rendering keyfile")
	}
	return sb.String(), nil
}

// Write renders the keyfile into dir with the 0600 mode NetworkManager
// requires for files holding secrets.
func (k Keyfile) Write(dir string) error {
	contents, err := k.Render()
	if err != nil {
		return err
	}

	path := filepath.Join(dir, k.ID)
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		return common.WrapError(err, "writing keyfile "+path)
	}
	return nil
}

// DeleteOldKeyfiles removes previously generated PIA keyfiles from dir so
// a re-run replaces stale routes instead of accumulating them.
func DeleteOldKeyfiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, common.WrapError(err, "reading "+dir)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), common.ProfilePrefix) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("removing %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}
