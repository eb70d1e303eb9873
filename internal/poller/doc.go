// Package poller runs the fixed-interval poll loop: fetch the conquer page, select the
// events that are new and match a subscribed keyword, and announce them on the
// subscribed chat channel.
//
// The loop never stops on errors. Fetch failures are logged and, when a channel is set,
// reported to it; the next attempt happens after the regular interval.
package poller
