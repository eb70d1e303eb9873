package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/tw-conquers/internal/event"
)

const (
	DefaultURL = "http://de.twstats.com/de152/index.php?page=ennoblements&live=live"
	UserAgent  = "tw-conquers/1.0 (github.com/pfrederiksen/tw-conquers)"
	Timeout    = 30 * time.Second

	// WidgetSelector identifies the table holding the conquer rows
	WidgetSelector = ".widget"

	// maxBodySize caps how much of a response is read
	maxBodySize = 10 << 20
)

// columns lists the expected cells of a conquer row, in order
var columns = [...]string{"place", "points", "old_holder", "new_holder", "time"}

// Scraper handles fetching and parsing the conquer feed
type Scraper struct {
	client *http.Client
	url    string
}

// New creates a new Scraper for url. A zero timeout uses Timeout.
func New(url string, timeout time.Duration) *Scraper {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = Timeout
	}
	return &Scraper{
		client: &http.Client{
			Timeout: timeout,
		},
		url: url,
	}
}

// URL returns the page the scraper polls
func (s *Scraper) URL() string {
	return s.url
}

// FetchEvents fetches the conquer page and parses its events in document order
func (s *Scraper) FetchEvents(ctx context.Context) ([]event.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, &ParseError{Kind: KindRequest, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &ParseError{Kind: KindRequest, Err: fmt.Errorf("fetching page: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ParseError{Kind: KindRequest, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, &ParseError{Kind: KindRequest, Err: fmt.Errorf("reading body: %w", err)}
	}
	// A truncated page would parse cleanly with rows missing
	if len(body) > maxBodySize {
		return nil, &ParseError{Kind: KindRequest, Err: fmt.Errorf("response body exceeds %d bytes", maxBodySize)}
	}

	return parseBody(body)
}

// ParseEvents extracts events from an HTML document
func ParseEvents(r io.Reader) ([]event.Event, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Kind: KindRequest, Err: fmt.Errorf("reading body: %w", err)}
	}
	return parseBody(body)
}

func parseBody(body []byte) ([]event.Event, error) {
	if !utf8.Valid(body) {
		return nil, &ParseError{Kind: KindEncoding, Err: errors.New("body is not valid UTF-8")}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Kind: KindRequest, Err: fmt.Errorf("parsing HTML: %w", err)}
	}

	widget := doc.Find(WidgetSelector).First()
	if widget.Length() == 0 {
		return nil, &ParseError{Kind: KindNoEvents}
	}

	rows := widget.Find("tr")
	events := make([]event.Event, 0, rows.Length())

	// Row 0 is the header
	for i := 1; i < rows.Length(); i++ {
		evt, err := parseRow(rows.Eq(i))
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}

	return events, nil
}

// parseRow converts one table row into an Event
func parseRow(row *goquery.Selection) (event.Event, error) {
	cells := row.Find("td")

	var values [len(columns)]string
	for i, name := range columns {
		if i >= cells.Length() {
			return event.Event{}, &ParseError{Kind: KindValueMissing, Column: name, Row: rowHTML(row)}
		}
		values[i] = cells.Eq(i).Text()
	}

	pointsText := strings.TrimSpace(strings.ReplaceAll(values[1], ",", ""))
	points, err := strconv.Atoi(pointsText)
	if err != nil {
		return event.Event{}, &ParseError{Kind: KindPointsParse, Row: rowHTML(row), Err: err}
	}

	return event.New(values[0], points, values[2], values[3], event.ParseTime(strings.TrimSpace(values[4]))), nil
}

func rowHTML(row *goquery.Selection) string {
	html, err := goquery.OuterHtml(row)
	if err != nil {
		return row.Text()
	}
	return html
}
