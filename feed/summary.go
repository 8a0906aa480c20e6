package feed

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"civicsync/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// FallbackSummary replaces a summary the generator could not produce.
const FallbackSummary = "Unable to generate summary at this time."

// ErrEmptySummary is returned when a generator answers with blank text.
var ErrEmptySummary = errors.New("empty summary")

// SummaryRequest is the input handed to a SummaryGenerator.
type SummaryRequest struct {
	IssueID   string
	Title     string
	Address   string
	ImageURLs []string
}

// SummaryGenerator produces a short factual summary of an issue.
type SummaryGenerator interface {
	GenerateSummary(ctx context.Context, req SummaryRequest) (string, error)
}

// ImageResolver turns a stored image path into a fetchable URL.
type ImageResolver interface {
	PublicURL(path string) string
}

// SummarizerOptions bounds the work done per feed load.
type SummarizerOptions struct {
	// Concurrency caps in-flight generator calls per load. Values below 1 mean 1.
	Concurrency int
	// Timeout applies to each generator call. Zero disables it.
	Timeout time.Duration
}

// Summarizer attaches AI summaries to issues for privileged viewers.
type Summarizer struct {
	gen    SummaryGenerator
	images ImageResolver
	opts   SummarizerOptions
	logger *zap.Logger
}

func NewSummarizer(gen SummaryGenerator, images ImageResolver, opts SummarizerOptions, logger *zap.Logger) *Summarizer {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{gen: gen, images: images, opts: opts, logger: logger}
}

// NewCache starts a cache scoped to a single feed load.
func (s *Summarizer) NewCache() *SummaryCache {
	return &SummaryCache{
		summarizer: s,
		entries:    make(map[string]string),
	}
}

// Annotate fills in missing summaries when the viewer may see them and
// returns issues untouched otherwise. Failures never surface: an issue whose
// summary could not be generated carries FallbackSummary.
func (s *Summarizer) Annotate(ctx context.Context, viewer models.Viewer, issues []models.IssueWithAuthor) []models.IssueWithAuthor {
	if !viewer.CanViewSummaries() {
		return issues
	}

	cache := s.NewCache()
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)

	for i := range issues {
		if issues[i].AISummary != nil {
			continue
		}
		g.Go(func() error {
			issues[i] = cache.EnsureSummary(ctx, issues[i])
			return nil
		})
	}
	_ = g.Wait()

	return issues
}

// SummaryCache memoizes generated summaries by issue id for one load.
// Each id reaches the generator at most once, concurrent callers included.
type SummaryCache struct {
	summarizer *Summarizer

	mu      sync.Mutex
	entries map[string]string
	group   singleflight.Group
}

// EnsureSummary returns issue with AISummary set. Stored summaries are kept
// as they are and never regenerated.
func (c *SummaryCache) EnsureSummary(ctx context.Context, issue models.IssueWithAuthor) models.IssueWithAuthor {
	if issue.AISummary != nil {
		return issue
	}

	key := issue.Key()
	if text, ok := c.lookup(key); ok {
		issue.AISummary = &text
		return issue
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		if text, ok := c.lookup(key); ok {
			return text, nil
		}
		text := c.generate(ctx, issue)
		c.mu.Lock()
		c.entries[key] = text
		c.mu.Unlock()
		return text, nil
	})

	text := v.(string)
	issue.AISummary = &text
	return issue
}

// Len reports how many issues have an entry.
func (c *SummaryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *SummaryCache) lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, ok := c.entries[key]
	return text, ok
}

func (c *SummaryCache) generate(ctx context.Context, issue models.IssueWithAuthor) string {
	s := c.summarizer
	if s.gen == nil {
		return FallbackSummary
	}

	req := SummaryRequest{
		IssueID:   issue.Key(),
		Title:     issue.Title,
		ImageURLs: s.imageURLs(issue.Images),
	}
	if issue.Address != nil {
		req.Address = *issue.Address
	}

	callCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	text, err := s.gen.GenerateSummary(callCtx, req)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptySummary
	}
	if err != nil {
		s.logger.Warn("summary generation failed",
			zap.String("issue_id", req.IssueID),
			zap.Error(err))
		return FallbackSummary
	}
	return strings.TrimSpace(text)
}

func (s *Summarizer) imageURLs(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if s.images == nil {
			urls = append(urls, p)
			continue
		}
		if u := s.images.PublicURL(p); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
