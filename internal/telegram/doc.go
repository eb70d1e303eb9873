// Package telegram connects the bot to the Telegram Bot API.
//
// Client wraps the go-telegram-bot-api SDK. It delivers notifications to a chat
// (implementing notifier.Notifier) and long-polls for updates, passing every
// message or channel post to a command handler and sending its reply back to the
// originating chat.
//
// Authentication requires a bot token (from @BotFather).
package telegram
