package dto

import (
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"acaradar-web/pkg/upstream"
)

const DefaultMaxTopN = 200

var (
	topNPattern          = regexp.MustCompile(`^[1-9][0-9]*$`)
	legacyJournalPattern = regexp.MustCompile(`^journal([0-9]+)$`)
)

// Optional marks whether a query parameter was supplied at all.
type Optional[T any] struct {
	Value   T
	Present bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Present: true}
}

func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Present
}

// ListPapersRequest is the /selected_journals query. Every optional field keeps
// its raw text so the error message can point at what was wrong.
type ListPapersRequest struct {
	Journals  []string
	RequestID Optional[string]
	TopN      Optional[string]
	MinDate   Optional[string]
	MaxDate   Optional[string]
	Page      Optional[string]

	MaxTopN int
}

// ParseListPapersRequest reads journals from `journals` (comma separated or
// repeated), `journals[]`, or the legacy journal1..N fields.
func ParseListPapersRequest(values url.Values, maxTopN int) ListPapersRequest {
	if maxTopN <= 0 {
		maxTopN = DefaultMaxTopN
	}
	req := ListPapersRequest{
		Journals: parseJournals(values),
		MaxTopN:  maxTopN,
	}

	req.RequestID = firstPresent(values, "request_id", "job_id")
	req.TopN = firstPresent(values, "top_n", "n")
	req.MinDate = firstPresent(values, "min_date")
	req.MaxDate = firstPresent(values, "max_date")
	req.Page = firstPresent(values, "page")
	return req
}

func (r ListPapersRequest) Valid() bool {
	return r.ErrorMessage() == ""
}

// ErrorMessage is empty for a valid request.
func (r ListPapersRequest) ErrorMessage() string {
	if len(r.Journals) == 0 {
		return "You must select at least one journal"
	}

	topN, hasTopN, topNOK := r.topN()
	if hasTopN && !topNOK {
		return "top_n must be a positive integer"
	}
	if hasTopN && topN > r.maxTopN() {
		return "top_n must not exceed " + strconv.Itoa(r.maxTopN())
	}
	if hasTopN && r.requestID() == "" {
		return "Top N requires an embedded research interest (request_id). Please click 'Embed' first."
	}

	minDate, minOK := parseDate(r.MinDate)
	maxDate, maxOK := parseDate(r.MaxDate)
	if !minOK || !maxOK {
		return "min_date and max_date must be in YYYY-MM-DD format"
	}
	if minDate != nil && maxDate != nil && minDate.After(*maxDate) {
		return "min_date must be <= max_date"
	}
	return ""
}

// QueryParams builds the ordered upstream query for GET /papers.
func (r ListPapersRequest) QueryParams() []upstream.QueryParam {
	params := make([]upstream.QueryParam, 0, len(r.Journals)+5)
	for _, j := range r.Journals {
		params = append(params, upstream.QueryParam{Key: "journals[]", Value: j})
	}
	if page := r.page(); page > 0 {
		params = append(params, upstream.QueryParam{Key: "page", Value: strconv.Itoa(page)})
	}
	if id := r.requestID(); id != "" {
		params = append(params, upstream.QueryParam{Key: "request_id", Value: id})
	}
	if topN, ok, valid := r.topN(); ok && valid {
		params = append(params, upstream.QueryParam{Key: "top_n", Value: strconv.Itoa(topN)})
	}
	if v := strings.TrimSpace(r.MinDate.Value); r.MinDate.Present && v != "" {
		params = append(params, upstream.QueryParam{Key: "min_date", Value: v})
	}
	if v := strings.TrimSpace(r.MaxDate.Value); r.MaxDate.Present && v != "" {
		params = append(params, upstream.QueryParam{Key: "max_date", Value: v})
	}
	return params
}

func (r ListPapersRequest) requestID() string {
	return strings.TrimSpace(r.RequestID.Value)
}

func (r ListPapersRequest) maxTopN() int {
	if r.MaxTopN <= 0 {
		return DefaultMaxTopN
	}
	return r.MaxTopN
}

// topN reports (value, supplied, well-formed). Blank input counts as not supplied.
func (r ListPapersRequest) topN() (int, bool, bool) {
	raw := strings.TrimSpace(r.TopN.Value)
	if !r.TopN.Present || raw == "" {
		return 0, false, false
	}
	if !topNPattern.MatchString(raw) {
		return 0, true, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		// Only a range error is left once the pattern matched: too many digits.
		return math.MaxInt, true, true
	}
	return n, true, true
}

// page is 0 when absent; anything unparsable or below 1 becomes 1.
func (r ListPapersRequest) page() int {
	if !r.Page.Present {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(r.Page.Value))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// parseDate returns (nil, true) for a blank value and (nil, false) for a bad one.
func parseDate(o Optional[string]) (*time.Time, bool) {
	raw := strings.TrimSpace(o.Value)
	if !o.Present || raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func firstPresent(values url.Values, keys ...string) Optional[string] {
	for _, key := range keys {
		if v, ok := values[key]; ok && len(v) > 0 {
			return Some(v[0])
		}
	}
	return Optional[string]{}
}

func parseJournals(values url.Values) []string {
	var raw []string
	switch {
	case len(values["journals"]) > 0:
		for _, v := range values["journals"] {
			raw = append(raw, strings.Split(v, ",")...)
		}
	case len(values["journals[]"]) > 0:
		raw = values["journals[]"]
	default:
		raw = legacyJournals(values)
	}

	seen := make(map[string]bool, len(raw))
	journals := make([]string, 0, len(raw))
	for _, j := range raw {
		j = strings.TrimSpace(j)
		if j == "" || seen[j] {
			continue
		}
		seen[j] = true
		journals = append(journals, j)
	}
	return journals
}

func legacyJournals(values url.Values) []string {
	type indexed struct {
		index int
		value string
	}
	var found []indexed
	for key, v := range values {
		m := legacyJournalPattern.FindStringSubmatch(key)
		if m == nil || len(v) == 0 {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, indexed{index: idx, value: v[0]})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].index < found[j].index })

	out := make([]string, 0, len(found))
	for _, f := range found {
		out = append(out, f.value)
	}
	return out
}

// Paper is one normalized upstream paper record plus the strings the view shows.
type Paper struct {
	OriginID        string             `json:"origin_id"`
	Title           string             `json:"title"`
	Abstract        string             `json:"abstract"`
	PdfURL          string             `json:"pdf_url"`
	PublishedAt     string             `json:"published_at"`
	Authors         []string           `json:"authors"`
	Concepts        []string           `json:"concepts"`
	Embedding2D     *upstream.Vector2D `json:"embedding_2d,omitempty"`
	SimilarityScore *float64           `json:"similarity_score"`

	Published      string `json:"published"`
	AuthorsList    string `json:"authors_list"`
	ConceptsList   string `json:"concepts_list"`
	ShortEmbedding string `json:"short_embedding"`
}

// PapersPage is the canonical shape of an upstream /papers answer.
type PapersPage struct {
	Journals               []string           `json:"journals"`
	Papers                 []Paper            `json:"papers"`
	Pagination             map[string]any     `json:"pagination"`
	ResearchInterestTerm   string             `json:"research_interest_term"`
	ResearchInterestVector *upstream.Vector2D `json:"research_interest_2d"`
}
