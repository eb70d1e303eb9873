package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

func TestFetchEvents_Success(t *testing.T) {
	data, err := os.ReadFile("../../testdata/fixtures/ennoblements.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET request, got %s", r.Method)
		}
		if r.Header.Get("User-Agent") != UserAgent {
			t.Errorf("expected User-Agent %q, got %q", UserAgent, r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	}))
	defer server.Close()

	s := New(server.URL, 5*time.Second)
	events, err := s.FetchEvents(context.Background())
	if err != nil {
		t.Fatalf("FetchEvents() unexpected error: %v", err)
	}
	if len(events) != 4 {
		t.Errorf("expected 4 events, got %d", len(events))
	}
}

func TestFetchEvents_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := New(server.URL, time.Second).FetchEvents(context.Background())
			if KindOf(err) != KindRequest {
				t.Errorf("expected request error, got %v", err)
			}
		})
	}
}

func TestFetchEvents_OversizedBody(t *testing.T) {
	row := "<tr><td>Village %d</td><td>100</td><td>alice</td><td>bob</td><td>2024-03-09 - 17:05:42</td></tr>"
	padding := strings.Repeat("x", maxBodySize+1024)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><table class="widget"><tr><th>Village</th></tr>`)
		fmt.Fprintf(w, row, 1)
		fmt.Fprintf(w, "<!-- %s -->", padding)
		fmt.Fprintf(w, row, 2)
		fmt.Fprint(w, `</table></body></html>`)
	}))
	defer server.Close()

	events, err := New(server.URL, 5*time.Second).FetchEvents(context.Background())
	if KindOf(err) != KindRequest {
		t.Fatalf("expected request error for oversized body, got events=%d err=%v", len(events), err)
	}
	if !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("unexpected error message: %v", err)
	}
	if events != nil {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestFetchEvents_BodyAtLimit(t *testing.T) {
	page := `<html><body><table class="widget"><tr><th>Village</th></tr>` +
		"<tr><td>Village</td><td>100</td><td>alice</td><td>bob</td><td>2024-03-09 - 17:05:42</td></tr>" +
		`</table></body></html>`
	page += strings.Repeat(" ", maxBodySize-len(page))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	events, err := New(server.URL, 5*time.Second).FetchEvents(context.Background())
	if err != nil {
		t.Fatalf("FetchEvents() unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event, got %d", len(events))
	}
}

func TestFetchEvents_Timeout(t *testing.T) {
	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()
	defer close(done)

	_, err := New(server.URL, 50*time.Millisecond).FetchEvents(context.Background())
	if KindOf(err) != KindRequest {
		t.Errorf("expected request error on timeout, got %v", err)
	}
}

func TestFetchEvents_BadURL(t *testing.T) {
	_, err := New("://not a url", time.Second).FetchEvents(context.Background())
	if KindOf(err) != KindRequest {
		t.Errorf("expected request error for malformed URL, got %v", err)
	}
}

func TestFetchEvents_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(url, time.Second).FetchEvents(context.Background())
	if KindOf(err) != KindRequest {
		t.Errorf("expected request error for closed server, got %v", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New("", 0)
	if s.URL() != DefaultURL {
		t.Errorf("expected default URL, got %q", s.URL())
	}
	if s.client.Timeout != Timeout {
		t.Errorf("expected default timeout %v, got %v", Timeout, s.client.Timeout)
	}
}
