// Package scraper provides HTTP fetching and HTML parsing for the TribalWars conquer feed.
//
// The scraper fetches a twstats "ennoblements" page and extracts the rows of the table
// marked with the "widget" class into event.Event values. Parsing is all or nothing for
// structural problems: a row with missing columns or a non-numeric points column fails the
// whole page. A malformed timestamp only clears the event's time and keeps the row.
package scraper
