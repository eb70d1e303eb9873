// Package cli implements the command-line interface for tw-conquers.
//
// The cli package provides the Cobra-based CLI. The run command starts the bot: the
// poll loop, the Telegram command listener and the optional metrics endpoint, all
// sharing one signal-cancelled context. The check command fetches the conquer page
// once and prints the events as text or JSON, optionally filtered and sorted.
package cli
