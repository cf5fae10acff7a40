package mapper

import (
	"strings"
	"time"

	"acaradar-web/internal/dto"
	"acaradar-web/pkg/upstream"
)

var publishedLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type PaperMapper struct{}

func NewPaperMapper() *PaperMapper {
	return &PaperMapper{}
}

// ToPapersPage reads an unwrapped /papers answer. Papers may arrive as a bare list
// or as a {"data": [...]} collection.
func (m *PaperMapper) ToPapersPage(data map[string]any) dto.PapersPage {
	page := dto.PapersPage{
		Journals:             upstream.StringList(data["journals"]),
		Papers:               []dto.Paper{},
		Pagination:           map[string]any{},
		ResearchInterestTerm: upstream.String(data["research_interest_term"]),
	}
	if page.Journals == nil {
		page.Journals = []string{}
	}

	if raw, ok := upstream.Unwrap(data["papers"]).([]any); ok {
		for _, item := range raw {
			if p, ok := item.(map[string]any); ok {
				page.Papers = append(page.Papers, m.ToPaper(p))
			}
		}
	}

	if pagination, ok := data["pagination"].(map[string]any); ok {
		page.Pagination = pagination
	}

	if v, ok := upstream.NormalizeVector2D(data["research_interest_2d"]); ok {
		page.ResearchInterestVector = &v
	}
	return page
}

func (m *PaperMapper) ToPaper(raw map[string]any) dto.Paper {
	paper := dto.Paper{
		OriginID:    upstream.String(raw["origin_id"]),
		Title:       upstream.String(raw["title"]),
		Abstract:    upstream.String(raw["abstract"]),
		PdfURL:      upstream.String(raw["pdf_url"]),
		PublishedAt: upstream.String(raw["published_at"]),
		Authors:     upstream.StringList(raw["authors"]),
		Concepts:    upstream.StringList(raw["concepts"]),
	}
	if paper.Authors == nil {
		paper.Authors = []string{}
	}
	if paper.Concepts == nil {
		paper.Concepts = []string{}
	}

	if v, ok := upstream.NormalizeVector2D(raw["embedding_2d"]); ok {
		paper.Embedding2D = &v
		paper.ShortEmbedding = v.String()
	}
	if score, ok := upstream.Float(raw["similarity_score"]); ok {
		paper.SimilarityScore = &score
	}

	paper.Published = formatPublished(paper.PublishedAt)
	paper.AuthorsList = authorsList(raw["authors"])
	paper.ConceptsList = strings.Join(paper.Concepts, ", ")
	return paper
}

// formatPublished shortens a timestamp to YYYY-MM-DD and leaves anything it
// cannot parse as it was.
func formatPublished(raw string) string {
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}

// authorsList keeps an author string verbatim and joins a list.
func authorsList(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.Join(upstream.StringList(v), ", ")
}
