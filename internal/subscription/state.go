package subscription

import (
	"strconv"
	"sync"
	"time"
)

// ChannelID identifies a chat the bot can post to
type ChannelID int64

func (c ChannelID) String() string {
	return strconv.FormatInt(int64(c), 10)
}

// Snapshot is a consistent copy of the state at one point in time
type Snapshot struct {
	Channel    ChannelID
	HasChannel bool
	Keywords   []string
	LastUpdate time.Time
}

// State is the mutex-guarded subscription bundle shared between the poll loop and
// command handling. The zero value is not usable; use New.
type State struct {
	mu         sync.Mutex
	channel    ChannelID
	hasChannel bool
	keywords   []string
	lastUpdate time.Time
}

// New creates state with no channel, no keywords and lastUpdate set to start
func New(start time.Time) *State {
	return &State{
		keywords:   make([]string, 0),
		lastUpdate: start,
	}
}

// SetChannel designates the chat that receives notifications
func (s *State) SetChannel(id ChannelID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channel = id
	s.hasChannel = true
}

// AddKeywords appends keywords in order. Duplicates are kept.
// Returns the keyword list after the update.
func (s *State) AddKeywords(words ...string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keywords = append(s.keywords, words...)
	return copyStrings(s.keywords)
}

// ClearKeywords removes all keywords
func (s *State) ClearKeywords() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keywords = make([]string, 0)
}

// MarkUpdated advances lastUpdate to t. Earlier times are ignored so the
// timestamp never moves backwards. Reports whether the value changed.
func (s *State) MarkUpdated(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !t.After(s.lastUpdate) {
		return false
	}
	s.lastUpdate = t
	return true
}

// Snapshot returns a copy of all fields taken under one lock
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Channel:    s.channel,
		HasChannel: s.hasChannel,
		Keywords:   copyStrings(s.keywords),
		LastUpdate: s.lastUpdate,
	}
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
