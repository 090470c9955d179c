package catalog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dagrha/piactl/common"
)

// ServerRecord is one validated entry from the PIA server-list document.
type ServerRecord struct {
	// Name is the human-readable server name, e.g. "US East".
	Name string `json:"name"`
	// Ping is the probe endpoint, "host:port".
	Ping string `json:"ping"`
	// DNS is the server hostname used in generated keyfiles.
	DNS string `json:"dns"`
}

// Target returns the host part of the ping endpoint.
func (r ServerRecord) Target() string {
	if i := strings.IndexByte(r.Ping, ':'); i >= 0 {
		return r.Ping[:i]
	}
	return r.Ping
}

// valid reports whether the record carries both a display name and a
// probe-capable address.
func (r ServerRecord) valid() bool {
	return r.Name != "" && r.Ping != ""
}

// Fetcher retrieves the PIA server records. Implementations return
// common.ErrCatalogUnavailable (wrapped) when the document as a whole
// cannot be fetched or parsed.
type Fetcher interface {
	FetchServers(ctx context.Context) ([]ServerRecord, error)
}

// HTTPFetcher downloads the server-list document over HTTPS.
//
// The document is a JSON object on the first line of the response body,
// mapping opaque keys to heterogeneous values. Only values that decode to
// an object carrying both a name and a ping address are server records;
// everything else in the document is dropped without comment.
type HTTPFetcher struct {
	URL    string
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher for the given server-list URL.
func NewHTTPFetcher(url string) *HTTPFetcher {
	return &HTTPFetcher{
		URL:    url,
		Client: &http.Client{Timeout: common.FetchTimeout},
	}
}

// FetchServers implements Fetcher.
func (f *HTTPFetcher) FetchServers(ctx context.Context) ([]ServerRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, common.WrapError(common.ErrCatalogUnavailable, err.Error())
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, common.WrapError(common.ErrCatalogUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, common.WrapError(common.ErrCatalogUnavailable,
			fmt.Sprintf("unexpected status %s", resp.Status))
	}

	// The payload shares its response with a signature blob on
	// subsequent lines; only the first line is the JSON document.
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, common.WrapError(common.ErrCatalogUnavailable, err.Error())
		}
		return nil, common.WrapError(common.ErrCatalogUnavailable, "empty response body")
	}

	return ParseServerList(scanner.Bytes())
}

// ParseServerList decodes the raw server-list JSON into validated records.
// Individual malformed entries are skipped; a document that is not valid
// JSON at all fails with common.ErrCatalogUnavailable.
func ParseServerList(data []byte) ([]ServerRecord, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, common.WrapError(common.ErrCatalogUnavailable, err.Error())
	}

	records := make([]ServerRecord, 0, len(doc))
	for _, raw := range doc {
		var rec ServerRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		if !rec.valid() {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
