package export

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestRenderHTMLInjectsPayload(t *testing.T) {
	p := MakePayload(testModel(t))

	html, err := RenderHTML(context.Background(), p, HTMLOptions{})
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	doc := string(html)

	if strings.Contains(doc, payloadPlaceholder) {
		t.Error("payload placeholder was not replaced")
	}
	if !strings.Contains(doc, `"anomaly_notes"`) {
		t.Error("rendered document does not embed the payload")
	}
	// Without self-contained mode the CDN reference stays in place.
	if !strings.Contains(doc, visNetworkTag) {
		t.Error("CDN script tag missing from non-self-contained document")
	}
}

func TestRenderHTMLSelfContained(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.String() != visNetworkURL {
			t.Errorf("unexpected fetch URL %s", r.URL)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Body:       io.NopCloser(strings.NewReader("/* vis-network stub */")),
		}, nil
	})}

	p := MakePayload(testModel(t))
	html, err := RenderHTML(context.Background(), p, HTMLOptions{SelfContained: true, Client: client})
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	doc := string(html)

	if strings.Contains(doc, visNetworkTag) {
		t.Error("CDN script tag still present in self-contained document")
	}
	if !strings.Contains(doc, "/* vis-network stub */") {
		t.Error("fetched library was not inlined")
	}
}

func TestRenderHTMLSelfContainedFetchFailure(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusServiceUnavailable,
			Status:     "503 Service Unavailable",
			Body:       io.NopCloser(strings.NewReader("")),
		}, nil
	})}

	p := MakePayload(testModel(t))
	html, err := RenderHTML(context.Background(), p, HTMLOptions{SelfContained: true, Client: client})
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	// Fetch failure degrades to the CDN reference instead of failing the render.
	if !strings.Contains(string(html), visNetworkTag) {
		t.Error("CDN fallback missing after fetch failure")
	}
}
