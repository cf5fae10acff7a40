package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"acaradar-web/internal/pkg/logger"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusUnknown   = "unknown"

	DefaultMaxAttempts  = 10
	DefaultPollInterval = 200 * time.Millisecond
	DefaultJobPath      = "/research_interest"
)

// JobResult is the last observation of an upstream job.
type JobResult struct {
	Status   string    `json:"status"`
	Concepts []string  `json:"concepts"`
	Vector   *Vector2D `json:"vector,omitempty"`
	Attempts int       `json:"attempts"`
}

func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// Terminal is false when the attempt budget ran out first; the job is still in progress.
func (r JobResult) Terminal() bool {
	return IsTerminalStatus(r.Status)
}

func (r JobResult) Completed() bool {
	return r.Status == StatusCompleted
}

func (r JobResult) Failed() bool {
	return r.Status == StatusFailed
}

// AttemptObserver is told about every poll attempt, in order.
type AttemptObserver func(attempt, maxAttempts int, result JobResult)

type PollerOption func(*Poller)

func WithMaxAttempts(n int) PollerOption {
	return func(p *Poller) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d >= 0 {
			p.interval = d
		}
	}
}

func WithJobPath(path string) PollerOption {
	return func(p *Poller) {
		if strings.TrimSpace(path) != "" {
			p.jobPath = "/" + strings.Trim(path, "/")
		}
	}
}

// WithSleeper replaces time.Sleep between attempts.
func WithSleeper(sleep func(time.Duration)) PollerOption {
	return func(p *Poller) {
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// Poller drives an upstream job to a terminal status within a fixed attempt budget.
// It blocks the calling goroutine for at most maxAttempts × interval plus call time.
type Poller struct {
	executor    Executor
	jobPath     string
	maxAttempts int
	interval    time.Duration
	sleep       func(time.Duration)
	logger      logger.ILogger
}

func NewPoller(executor Executor, log logger.ILogger, opts ...PollerOption) *Poller {
	if log == nil {
		log = logger.NewNopLogger()
	}
	p := &Poller{
		executor:    executor,
		jobPath:     DefaultJobPath,
		maxAttempts: DefaultMaxAttempts,
		interval:    DefaultPollInterval,
		sleep:       time.Sleep,
		logger:      log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Poller) MaxAttempts() int {
	return p.maxAttempts
}

// BasePath is where jobs are submitted; status lives at BasePath/{id}.
func (p *Poller) BasePath() string {
	return p.jobPath
}

func (p *Poller) JobPath(jobID string) string {
	return p.jobPath + "/" + url.PathEscape(jobID)
}

// PollUntilTerminal never returns an error: unreachable or failing attempts simply
// leave the previous observation in place, and budget exhaustion is a valid outcome.
func (p *Poller) PollUntilTerminal(ctx context.Context, holder CookieHolder, jobID string, observe AttemptObserver) JobResult {
	result := JobResult{Status: StatusUnknown, Concepts: []string{}}

	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return result
	}

	path := p.JobPath(jobID)
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		result.Attempts = attempt

		resp, err := p.executor.Execute(ctx, holder, http.MethodGet, path, nil, nil)
		switch {
		case err != nil:
			p.logger.Warn("Poller", "Job status call failed", map[string]interface{}{
				"job_id":  jobID,
				"attempt": attempt,
				"error":   err.Error(),
			})
		case !resp.Success():
			p.logger.Warn("Poller", "Job status call rejected", map[string]interface{}{
				"job_id":  jobID,
				"attempt": attempt,
				"status":  resp.StatusCode,
			})
		default:
			p.observe(&result, resp.Data())
		}

		if observe != nil {
			observe(attempt, p.maxAttempts, snapshot(result))
		}

		if result.Terminal() {
			break
		}
		if attempt < p.maxAttempts {
			p.sleep(p.interval)
		}
	}

	if !result.Terminal() {
		p.logger.Info("Poller", "Attempt budget exhausted", map[string]interface{}{
			"job_id":   jobID,
			"status":   result.Status,
			"attempts": result.Attempts,
		})
	}
	return result
}

func (p *Poller) observe(result *JobResult, data map[string]any) {
	if status := String(data["status"]); status != "" {
		result.Status = status
	}
	// Latched: an empty list never erases concepts seen on an earlier attempt.
	if concepts := StringList(data["concepts"]); len(concepts) > 0 {
		result.Concepts = concepts
	}
	if vec, ok := FindVector(data); ok {
		result.Vector = &vec
	}
}

func snapshot(r JobResult) JobResult {
	r.Concepts = append([]string{}, r.Concepts...)
	if r.Vector != nil {
		v := *r.Vector
		r.Vector = &v
	}
	return r
}
