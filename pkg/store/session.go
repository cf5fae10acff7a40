package store

import (
	"strings"
	"time"

	"acaradar-web/pkg/upstream"
)

// WatchedItem is a paper the user bookmarked during this browser session.
type WatchedItem struct {
	Key           string `json:"key"`
	Title         string `json:"title"`
	PublishedDate string `json:"published_date,omitempty"`
}

// Flash is a one-time notice shown on the next page render.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const (
	FlashNotice = "notice"
	FlashError  = "error"
)

// Session is the per-browser state loaded at request start and saved at request end.
type Session struct {
	ID string `json:"id"`

	// Merged "name=value; ..." header replayed on every upstream call
	UpstreamCookie string `json:"upstream_cookie"`

	// Most recent first, unique by Key
	WatchedItems []WatchedItem `json:"watched_items"`

	ResearchInterestTerm      string             `json:"research_interest_term,omitempty"`
	ResearchInterestVector    *upstream.Vector2D `json:"research_interest_vector,omitempty"`
	ResearchInterestRequestID string             `json:"research_interest_request_id,omitempty"`
	ResearchInterestConcepts  []string           `json:"research_interest_concepts,omitempty"`

	Flash *Flash `json:"flash,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Ensure Session can hold the upstream cookie jar
var _ upstream.CookieHolder = &Session{}

func New(id string) *Session {
	return &Session{
		ID:           id,
		WatchedItems: []WatchedItem{},
	}
}

func (s *Session) UpstreamCookieValue() string {
	return s.UpstreamCookie
}

func (s *Session) SetUpstreamCookieValue(value string) {
	s.UpstreamCookie = value
}

// Watch puts item at the front, replacing an older entry with the same key, and
// trims the list to limit entries.
func (s *Session) Watch(item WatchedItem, limit int) {
	item.Key = strings.TrimSpace(item.Key)
	if item.Key == "" {
		return
	}

	items := make([]WatchedItem, 0, len(s.WatchedItems)+1)
	items = append(items, item)
	for _, existing := range s.WatchedItems {
		if existing.Key != item.Key {
			items = append(items, existing)
		}
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	s.WatchedItems = items
}

func (s *Session) Unwatch(key string) bool {
	key = strings.TrimSpace(key)
	for i, existing := range s.WatchedItems {
		if existing.Key == key {
			s.WatchedItems = append(s.WatchedItems[:i:i], s.WatchedItems[i+1:]...)
			return true
		}
	}
	return false
}

// SetResearchInterest replaces the stored interest. A nil vector or empty concept
// list keeps whatever was stored for the same request id.
func (s *Session) SetResearchInterest(term, requestID string, vector *upstream.Vector2D, concepts []string) {
	sameRequest := requestID != "" && requestID == s.ResearchInterestRequestID

	s.ResearchInterestTerm = term
	s.ResearchInterestRequestID = requestID

	if vector != nil {
		v := *vector
		s.ResearchInterestVector = &v
	} else if !sameRequest {
		s.ResearchInterestVector = nil
	}

	if len(concepts) > 0 {
		s.ResearchInterestConcepts = append([]string(nil), concepts...)
	} else if !sameRequest {
		s.ResearchInterestConcepts = nil
	}
}

func (s *Session) SetFlash(kind, message string) {
	s.Flash = &Flash{Kind: kind, Message: message}
}

// TakeFlash returns the pending notice and clears it.
func (s *Session) TakeFlash() *Flash {
	f := s.Flash
	s.Flash = nil
	return f
}

// Clone returns a deep copy, so stores never share mutable state with a handler.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.WatchedItems = append([]WatchedItem{}, s.WatchedItems...)
	if s.ResearchInterestConcepts != nil {
		c.ResearchInterestConcepts = append([]string(nil), s.ResearchInterestConcepts...)
	}
	if s.ResearchInterestVector != nil {
		v := *s.ResearchInterestVector
		c.ResearchInterestVector = &v
	}
	if s.Flash != nil {
		f := *s.Flash
		c.Flash = &f
	}
	return &c
}
