// Package notifier provides the outbound side of the bot: sending a text message to a
// chat channel.
//
// Notifier is implemented by the Telegram client, by DryRunNotifier for local runs, and
// by TwitterNotifier, which mirrors announcements to a Twitter account. Fanout combines a
// primary notifier with best-effort mirrors.
package notifier
