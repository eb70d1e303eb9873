package bot

import (
	"strings"
	"unicode"
)

// Command is one of the fixed chat commands
type Command int

const (
	CommandUnknown Command = iota
	CommandTest
	CommandTalkHere
	CommandSearchFor
	CommandClearSearches
	CommandStatus
	CommandHelp
)

var commandNames = map[Command]string{
	CommandTest:          "test",
	CommandTalkHere:      "talk_here",
	CommandSearchFor:     "search_for",
	CommandClearSearches: "clear_searches",
	CommandStatus:        "status",
	CommandHelp:          "help",
}

// Commands lists the known commands in help order
var Commands = []Command{
	CommandTest,
	CommandTalkHere,
	CommandSearchFor,
	CommandClearSearches,
	CommandStatus,
	CommandHelp,
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Invocation is a parsed command with its arguments
type Invocation struct {
	Command Command
	Name    string // command name as typed
	Args    []string
}

// ParseCommand parses text into an Invocation. ok is false when the text is not
// addressed to the bot as a command. botName (without "@") enables "@botname cmd"
// mentions and filters "/cmd@otherbot" addressed to other bots; it may be empty.
func ParseCommand(text, botName string) (inv Invocation, ok bool) {
	text = strings.TrimSpace(text)

	if botName != "" {
		mention := "@" + botName
		if len(text) > len(mention) && strings.EqualFold(text[:len(mention)], mention) &&
			unicode.IsSpace(rune(text[len(mention)])) {
			text = strings.TrimSpace(text[len(mention):])
			text = strings.TrimLeft(text, "-/")
			return parseWords(text, botName)
		}
	}

	if !strings.HasPrefix(text, "-") && !strings.HasPrefix(text, "/") {
		return Invocation{}, false
	}
	return parseWords(text[1:], botName)
}

func parseWords(text, botName string) (Invocation, bool) {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	if len(words) == 0 {
		return Invocation{}, false
	}

	name := words[0]
	if at := strings.IndexByte(name, '@'); at >= 0 {
		target := name[at+1:]
		if botName != "" && !strings.EqualFold(target, botName) {
			return Invocation{}, false
		}
		name = name[:at]
	}

	inv := Invocation{
		Command: lookup(name),
		Name:    name,
		Args:    words[1:],
	}
	return inv, true
}

func lookup(name string) Command {
	for cmd, n := range commandNames {
		if n == name {
			return cmd
		}
	}
	// Telegram sends /start when a user first opens the chat
	if name == "start" {
		return CommandHelp
	}
	return CommandUnknown
}
