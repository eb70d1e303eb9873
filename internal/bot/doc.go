// Package bot implements the chat command layer: parsing inbound text into a fixed set
// of commands and applying them to the shared subscription state.
//
// Commands start with "-" or "/" (or a mention of the bot) and take arguments separated
// by spaces or commas, e.g. "-search_for Rome, Carthage". The package is independent of
// any chat SDK; the telegram package feeds it messages and delivers its replies.
package bot
