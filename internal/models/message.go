// Package models contains the data types shared by the roomchat packages.
package models

import (
	"sort"
	"strings"
	"time"
)

// MessageType identifies how a message body should be displayed
type MessageType string

const (
	TypeText  MessageType = "text"
	TypeImage MessageType = "image"
)

// ImagePlaceholder is the text stored alongside an image message
const ImagePlaceholder = "Sending image..."

// Message is a chat record as received from the realtime collection.
// Messages are never mutated client-side; a new snapshot replaces them.
type Message struct {
	ID        string      `json:"id"`
	Text      string      `json:"text,omitempty"`
	ImageURL  string      `json:"imageUrl,omitempty"`
	User      string      `json:"user,omitempty"`
	SenderUID string      `json:"senderUid,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	Type      MessageType `json:"type,omitempty"`
}

// IsImage reports whether the message should render as an image
func (m Message) IsImage() bool {
	return m.Type == TypeImage && m.ImageURL != ""
}

// Preview returns a single-line summary of the message body
func (m Message) Preview() string {
	if m.IsImage() {
		return "[image]"
	}
	return strings.Join(strings.Fields(m.Text), " ")
}

// Fields is the field-map appended to the collection. CreatedAt is absent
// on purpose: the backend stamps it on arrival.
type Fields struct {
	Text      string      `json:"text"`
	ImageURL  string      `json:"imageUrl,omitempty"`
	User      string      `json:"user"`
	SenderUID string      `json:"senderUid"`
	Type      MessageType `json:"type"`
}

// TextFields builds the record for a text message
func TextFields(text, user, uid string) Fields {
	return Fields{
		Text:      text,
		User:      user,
		SenderUID: uid,
		Type:      TypeText,
	}
}

// ImageFields builds the record for an image message
func ImageFields(dataURI, user, uid string) Fields {
	return Fields{
		Text:      ImagePlaceholder,
		ImageURL:  dataURI,
		User:      user,
		SenderUID: uid,
		Type:      TypeImage,
	}
}

// SortByCreatedAt orders messages ascending by creation time, keeping the
// original order for equal timestamps.
func SortByCreatedAt(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}

// Clone returns an independent copy of the list
func Clone(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
