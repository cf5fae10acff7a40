package service

import (
	"context"

	"acaradar-web/internal/dto"
	"acaradar-web/pkg/events"
	"acaradar-web/pkg/store"
)

type IWatchlistService interface {
	List(sess *store.Session) []store.WatchedItem
	Watch(ctx context.Context, sess *store.Session, req *dto.WatchPaperRequest) []store.WatchedItem
	Unwatch(ctx context.Context, sess *store.Session, key string) bool
}

type watchlistService struct {
	limit     int
	publisher IPublisherService
}

func NewWatchlistService(limit int, publisher IPublisherService) IWatchlistService {
	return &watchlistService{
		limit:     limit,
		publisher: publisher,
	}
}

func (s *watchlistService) List(sess *store.Session) []store.WatchedItem {
	return append([]store.WatchedItem{}, sess.WatchedItems...)
}

func (s *watchlistService) Watch(ctx context.Context, sess *store.Session, req *dto.WatchPaperRequest) []store.WatchedItem {
	sess.Watch(store.WatchedItem{
		Key:           req.Key,
		Title:         req.Title,
		PublishedDate: req.PublishedDate,
	}, s.limit)

	s.publisher.Publish(ctx, events.New(events.PaperWatched, map[string]interface{}{
		"key":   req.Key,
		"title": req.Title,
	}))
	return s.List(sess)
}

func (s *watchlistService) Unwatch(ctx context.Context, sess *store.Session, key string) bool {
	removed := sess.Unwatch(key)
	if removed {
		s.publisher.Publish(ctx, events.New(events.PaperUnwatched, map[string]interface{}{"key": key}))
	}
	return removed
}
