package service

import (
	"context"
	"sort"
	"strings"

	"github.com/nutrilife/campus/api/internal/model"
)

// Listing pagination bounds, matching the public API contract.
const (
	defaultListLimit = 10
	maxListLimit     = 50
)

// EventLister lists open events for the public listing.
type EventLister interface {
	ListOpen(ctx context.Context) ([]*model.Event, error)
}

// EventService serves the public read-only event listing.
type EventService struct {
	events EventLister
}

// NewEventService constructs the event listing service.
func NewEventService(events EventLister) *EventService {
	return &EventService{events: events}
}

// EventPage is one page of the public event listing.
type EventPage struct {
	Page   int                  `json:"page"`
	Limit  int                  `json:"limit"`
	Total  int                  `json:"total"`
	Events []model.EventSummary `json:"data"`
}

// ListOpen returns open events filtered by free text, sorted by start
// time, paginated.
func (s *EventService) ListOpen(ctx context.Context, filters model.EventSearchFilters) (*EventPage, error) {
	events, err := s.events.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(filters.Query))
	matched := make([]*model.Event, 0, len(events))
	for _, ev := range events {
		if q == "" || eventMatches(ev, q) {
			matched = append(matched, ev)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].StartAt.Before(matched[j].StartAt)
	})

	limit, page := clampPagination(filters.Limit, filters.Page)
	pageItems := paginate(matched, limit, page)

	summaries := make([]model.EventSummary, 0, len(pageItems))
	for _, ev := range pageItems {
		summaries = append(summaries, ev.Summary())
	}

	return &EventPage{
		Page:   page,
		Limit:  limit,
		Total:  len(matched),
		Events: summaries,
	}, nil
}

// eventMatches checks the free-text filter against title, category and
// description.
func eventMatches(ev *model.Event, q string) bool {
	return strings.Contains(strings.ToLower(ev.Title), q) ||
		strings.Contains(strings.ToLower(ev.Category), q) ||
		strings.Contains(strings.ToLower(ev.Description), q)
}

// clampPagination applies the listing defaults and bounds.
func clampPagination(limit, page int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if page < 1 {
		page = 1
	}
	return limit, page
}

// paginate slices one page out of a result set.
func paginate[T any](items []T, limit, page int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
