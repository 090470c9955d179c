package setup

import (
	"context"
	"fmt"

	"github.com/dagrha/piactl/catalog"
	"github.com/dagrha/piactl/common"
	"github.com/dagrha/piactl/config"
)

// Options configures a setup run.
type Options struct {
	Config      *config.Config
	Credentials Credentials
	// Fetcher retrieves the server list used to generate keyfiles.
	Fetcher catalog.Fetcher
	// ConfirmInstall is asked before each package installation.
	ConfirmInstall func(pkg string) bool
	// SkipPackages skips distro detection and package installation.
	SkipPackages bool
}

// Run performs the full route configuration: package installation, CA
// certificate download, and one keyfile per server record. Root is
// required. The caller restarts NetworkManager afterwards.
func Run(ctx context.Context, opts Options) (int, error) {
	if err := CheckRoot(); err != nil {
		return 0, err
	}

	if !opts.SkipPackages {
		distro, err := DetectDistro()
		if err != nil {
			return 0, err
		}
		fmt.Printf("Your distro appears to be %s.\n", distro.ID)

		if err := distro.InstallPackages(ctx, opts.ConfirmInstall); err != nil {
			return 0, err
		}
	}

	fmt.Println("\nDownloading PIA certificate...")
	if err := DownloadCert(ctx, opts.Config.CertURL, opts.Config.CertPath); err != nil {
		return 0, err
	}

	records, err := opts.Fetcher.FetchServers(ctx)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, common.WrapError(common.ErrCatalogUnavailable, "server list contains no usable records")
	}

	removed, err := DeleteOldKeyfiles(opts.Config.ConnectionsDir)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		common.LogInfo("Deleted %d old PIA keyfiles", removed)
	}

	written := 0
	for _, rec := range records {
		if rec.DNS == "" {
			// A record without a hostname cannot serve as an OpenVPN
			// remote; skip it.
			common.LogDebug("Skipping %q: no dns field", rec.Name)
			continue
		}

		kf := NewKeyfile(
			rec.Name,
			rec.DNS,
			opts.Credentials.Username,
			opts.Credentials.Password,
			opts.Config.CertPath,
			opts.Config.Port,
			opts.Config.Auth,
			opts.Config.Cipher,
			opts.Config.DNSServers,
		)
		if err := kf.Write(opts.Config.ConnectionsDir); err != nil {
			return written, err
		}
		written++
	}

	common.LogInfo("Wrote %d PIA keyfiles to %s", written, opts.Config.ConnectionsDir)
	return written, nil
}
