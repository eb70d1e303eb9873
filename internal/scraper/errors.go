package scraper

import (
	"errors"
	"fmt"
)

// Kind classifies why fetching or parsing a page failed
type Kind int

const (
	KindRequest      Kind = iota + 1 // transport failure, bad URL or non-success status
	KindEncoding                     // response body is not valid UTF-8
	KindNoEvents                     // no widget table on the page
	KindValueMissing                 // a row has fewer than five cells
	KindPointsParse                  // the points column is not numeric
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindEncoding:
		return "encoding"
	case KindNoEvents:
		return "no_events"
	case KindValueMissing:
		return "value_missing"
	case KindPointsParse:
		return "points_parse"
	default:
		return "unknown"
	}
}

// ErrNoEvents is matched by errors.Is for pages without a widget table
var ErrNoEvents = errors.New("no events found")

// ParseError describes a failed fetch or parse of the conquer page
type ParseError struct {
	Kind   Kind
	Column string // missing column name, for KindValueMissing
	Row    string // raw row markup, for KindValueMissing and KindPointsParse
	Err    error
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case KindRequest:
		return fmt.Sprintf("error while making request: %v", e.Err)
	case KindEncoding:
		return fmt.Sprintf("invalid response encoding: %v", e.Err)
	case KindNoEvents:
		return ErrNoEvents.Error()
	case KindValueMissing:
		return fmt.Sprintf("missing value for %s in %s", e.Column, e.Row)
	case KindPointsParse:
		return fmt.Sprintf("failed to parse point data: %v", e.Err)
	default:
		return fmt.Sprintf("parse error: %v", e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNoEvents) match without wrapping the sentinel
func (e *ParseError) Is(target error) bool {
	return target == ErrNoEvents && e.Kind == KindNoEvents
}

// KindOf returns the Kind of err, or 0 if err is not a *ParseError
func KindOf(err error) Kind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
