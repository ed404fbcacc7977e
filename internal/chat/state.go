package chat

import "github.com/diogo/roomchat/internal/models"

// State is the chat screen state
type State struct {
	Draft    string
	Messages []models.Message
	live     bool
}

// ApplyCached shows msgs unless a live snapshot has already arrived.
// It reports whether the list changed.
func (s *State) ApplyCached(msgs []models.Message) bool {
	if s.live {
		return false
	}
	s.Messages = msgs
	return true
}

// ApplySnapshot replaces the list with a live snapshot
func (s *State) ApplySnapshot(msgs []models.Message) {
	s.live = true
	s.Messages = msgs
}

// Live reports whether a live snapshot has been applied
func (s State) Live() bool {
	return s.live
}

// Latest returns the newest message
func (s State) Latest() (models.Message, bool) {
	if len(s.Messages) == 0 {
		return models.Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Placement is which side of the list a message is drawn on
type Placement int

const (
	Theirs Placement = iota
	Mine
)

func (p Placement) String() string {
	if p == Mine {
		return "mine"
	}
	return "theirs"
}

// PlacementFor returns Mine when msg was sent by uid. A signed-out viewer
// owns nothing.
func PlacementFor(msg models.Message, uid string) Placement {
	if uid != "" && msg.SenderUID == uid {
		return Mine
	}
	return Theirs
}
