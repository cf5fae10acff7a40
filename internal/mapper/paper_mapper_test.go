package mapper

import (
	"testing"

	"acaradar-web/pkg/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPapersPage(t *testing.T) {
	m := NewPaperMapper()

	page := m.ToPapersPage(map[string]any{
		"research_interest_term": "graphs",
		"research_interest_2d":   map[string]any{"x": 0.5, "y": -1.0},
		"journals":               []any{"MIS Quarterly"},
		"papers": map[string]any{"data": []any{
			map[string]any{
				"origin_id":        "arxiv:1",
				"title":            "Graph Things",
				"published_at":     "2024-03-05T10:00:00Z",
				"authors":          "Ada, Grace",
				"concepts":         []any{"graphs", "learning"},
				"embedding_2d":     map[string]any{"x": 1.5, "y": 2.0},
				"similarity_score": 0.91,
			},
			"not a paper",
		}},
		"pagination": map[string]any{"current": 1.0, "total_pages": 3.0},
	})

	assert.Equal(t, "graphs", page.ResearchInterestTerm)
	require.NotNil(t, page.ResearchInterestVector)
	assert.Equal(t, upstream.Vector2D{X: 0.5, Y: -1}, *page.ResearchInterestVector)
	assert.Equal(t, []string{"MIS Quarterly"}, page.Journals)
	assert.Equal(t, 3.0, page.Pagination["total_pages"])

	require.Len(t, page.Papers, 1)
	p := page.Papers[0]
	assert.Equal(t, "arxiv:1", p.OriginID)
	assert.Equal(t, "2024-03-05", p.Published)
	assert.Equal(t, "Ada, Grace", p.AuthorsList)
	assert.Equal(t, "graphs, learning", p.ConceptsList)
	assert.Equal(t, "x=1.5, y=2", p.ShortEmbedding)
	require.NotNil(t, p.SimilarityScore)
	assert.InDelta(t, 0.91, *p.SimilarityScore, 1e-9)
}

func TestToPapersPageBareListAndMissingFields(t *testing.T) {
	page := NewPaperMapper().ToPapersPage(map[string]any{
		"papers": []any{map[string]any{"title": "Untitled", "authors": []any{"A", "B"}, "published_at": "spring 2024"}},
	})

	assert.Nil(t, page.ResearchInterestVector)
	assert.Empty(t, page.Journals)
	assert.NotNil(t, page.Pagination)

	require.Len(t, page.Papers, 1)
	p := page.Papers[0]
	assert.Equal(t, "A, B", p.AuthorsList)
	assert.Equal(t, "spring 2024", p.Published)
	assert.Empty(t, p.ShortEmbedding)
	assert.Nil(t, p.SimilarityScore)
	assert.Empty(t, p.ConceptsList)
}

func TestFormatPublished(t *testing.T) {
	tests := map[string]string{
		"2024-01-02":                "2024-01-02",
		"2024-01-02 03:04:05 +0000": "2024-01-02",
		"2024-01-02T03:04:05":       "2024-01-02",
		"":                          "",
		"yesterday":                 "yesterday",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatPublished(in), in)
	}
}
