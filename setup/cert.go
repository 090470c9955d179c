package setup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dagrha/piactl/common"
)

// DownloadCert fetches the PIA CA certificate and installs it at destPath.
// The parent directory is created if missing.
func DownloadCert(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return common.WrapError(err, "building certificate request")
	}

	client := &http.Client{Timeout: common.FetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return common.WrapError(err, "downloading certificate")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading certificate: unexpected status %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return common.WrapError(err, "creating certificate directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".ca-*")
	if err != nil {
		return common.WrapError(err, "creating temporary certificate file")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return common.WrapError(err, "writing certificate")
	}
	if err := tmp.Close(); err != nil {
		return common.WrapError(err, "closing certificate file")
	}

	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return common.WrapError(err, "setting certificate permissions")
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return common.WrapError(err, "installing certificate")
	}

	common.LogInfo("CA certificate saved to %s", destPath)
	return nil
}
