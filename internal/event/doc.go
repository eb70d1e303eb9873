// Package event provides the conquer event type scraped from the TribalWars statistics
// page and the filtering used to decide which events are worth announcing.
//
// An Event records one village changing hands. Events are built once by the scraper and
// treated as immutable values afterwards. Diff selects the events that are newer than the
// last announcement and match at least one subscribed keyword.
package event
