package dto

import (
	"regexp"
	"strings"

	"acaradar-web/pkg/upstream"
)

// InterestTermPattern allows word characters, whitespace and hyphens.
var InterestTermPattern = regexp.MustCompile(`^[\w\s-]+$`)

type EmbedInterestRequest struct {
	Term    string `json:"term" form:"term" validate:"required,interest_term"`
	Channel string `json:"channel" form:"channel" validate:"omitempty,uuid"`
}

// Normalize trims user input before validation.
func (r *EmbedInterestRequest) Normalize() {
	r.Term = strings.TrimSpace(r.Term)
	r.Channel = strings.TrimSpace(r.Channel)
}

// EmbedInterestPayload is the upstream POST /research_interest body.
type EmbedInterestPayload struct {
	Term string `json:"term"`
}

type EmbedInterestResult struct {
	Term      string             `json:"term"`
	RequestID string             `json:"request_id"`
	Status    string             `json:"status"`
	Concepts  []string           `json:"concepts"`
	Vector    *upstream.Vector2D `json:"vector_2d,omitempty"`
	Attempts  int                `json:"attempts"`
}

func (r *EmbedInterestResult) InProgress() bool {
	return !upstream.IsTerminalStatus(r.Status)
}

type ResearchInterestStatusResponse struct {
	RequestID string             `json:"request_id"`
	Status    string             `json:"status"`
	Terminal  bool               `json:"terminal"`
	Concepts  []string           `json:"concepts"`
	Vector    *upstream.Vector2D `json:"vector_2d,omitempty"`
}

// ProgressFrame is pushed to websocket subscribers while a job is polled.
type ProgressFrame struct {
	Channel string            `json:"channel"`
	Data    ProgressFrameData `json:"data"`
}

type ProgressFrameData struct {
	Status      string   `json:"status"`
	Attempt     int      `json:"attempt"`
	MaxAttempts int      `json:"max_attempts"`
	Percent     int      `json:"percent"`
	Concepts    []string `json:"concepts"`
}
