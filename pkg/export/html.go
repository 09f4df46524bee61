package export

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// The viewer template ships inside the binary so a render never depends on
// files next to the executable.
//
//go:embed assets/topology.html
var topologyTemplate string

const (
	payloadPlaceholder = "{{PAYLOAD_JSON}}"

	visNetworkURL = "https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"
	visNetworkTag = `<script src="` + visNetworkURL + `"></script>`

	visFetchTimeout = 10 * time.Second
)

// HTMLOptions configures HTML rendering.
type HTMLOptions struct {
	// SelfContained inlines the vis-network library into the document so it
	// opens offline. Requires network access at render time; on fetch
	// failure the CDN reference is kept and the document still renders.
	SelfContained bool

	// Client overrides the HTTP client used to fetch the library.
	// Nil means a default client with a 10s timeout.
	Client *http.Client
}

// RenderHTML renders a payload into a single interactive HTML document.
func RenderHTML(ctx context.Context, p *Payload, opts HTMLOptions) ([]byte, error) {
	data, err := p.MarshalCompact()
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	html := strings.Replace(topologyTemplate, payloadPlaceholder, string(data), 1)

	if opts.SelfContained {
		if js, err := fetchVisNetwork(ctx, opts.Client); err == nil {
			html = strings.Replace(html, visNetworkTag, "<script>\n"+js+"\n</script>", 1)
		}
	}
	return []byte(html), nil
}

// fetchVisNetwork downloads the vis-network bundle for inlining.
func fetchVisNetwork(ctx context.Context, client *http.Client) (string, error) {
	if client == nil {
		client = &http.Client{Timeout: visFetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, visNetworkURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch vis-network: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
