package dto

import (
	"strings"

	"acaradar-web/pkg/store"
)

type WatchPaperRequest struct {
	Key           string `json:"key" form:"key" validate:"required,max=256"`
	Title         string `json:"title" form:"title" validate:"required,max=1024"`
	PublishedDate string `json:"published_date" form:"published_date" validate:"omitempty,max=64"`
}

func (r *WatchPaperRequest) Normalize() {
	r.Key = strings.TrimSpace(r.Key)
	r.Title = strings.TrimSpace(r.Title)
	r.PublishedDate = strings.TrimSpace(r.PublishedDate)
}

// WatchAck is the bookmark endpoint acknowledgement.
type WatchAck struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type WatchlistResponse struct {
	Ok    bool                `json:"ok"`
	Items []store.WatchedItem `json:"items"`
}
