// Package models defines client-side data models used by the ChatApp client.
package models

import (
	"sort"
	"time"
)

// MessageKind classifies a chat message payload.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
)

// Message is one entry of the chat log. Exactly one of Body/ImageData is
// populated, matching Kind. CreatedAt is assigned by the server and is nil
// for a just-sent message that has not been acknowledged yet.
type Message struct {
	// ID is the stable identifier assigned by the remote store.
	ID string `json:"id"`

	// Author is the sender's display name at send time.
	Author string `json:"user"`

	// Kind is "text" or "image".
	Kind MessageKind `json:"type"`

	// Body holds the text content for text messages.
	Body string `json:"text,omitempty"`

	// ImageData holds an inline base64 data URI for image messages.
	ImageData string `json:"imageBase64,omitempty"`

	// CreatedAt is the server-assigned timestamp, nil until acknowledged.
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// InferKind applies the defaulting rule for records with no kind field:
// a non-empty image payload means image, anything else is text.
func InferKind(kind MessageKind, imageData string) MessageKind {
	if kind == KindText || kind == KindImage {
		return kind
	}
	if imageData != "" {
		return KindImage
	}
	return KindText
}

// Normalize fills in a missing or unknown Kind in place.
func (m *Message) Normalize() {
	m.Kind = InferKind(m.Kind, m.ImageData)
}

// SortByCreatedAt orders messages ascending by CreatedAt, in place and
// stable. Messages without a timestamp keep their relative order and sort
// after all timestamped ones.
func SortByCreatedAt(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		a, b := msgs[i].CreatedAt, msgs[j].CreatedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}
