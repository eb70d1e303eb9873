// Package subscription holds the bot's shared, in-memory subscription state: the chat the
// bot talks on, the keywords it watches for, and when it last announced events.
//
// All fields are guarded by a single mutex so that readers always observe a consistent
// snapshot. Nothing here is persisted; a restart resets the state.
package subscription
