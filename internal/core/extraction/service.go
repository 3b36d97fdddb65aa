package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/fincadocs/internal/core/domain"
)

type Config struct {
	// Timeout bounds one strategy attempt. Strategies implementing budgeted may ask for more.
	Timeout time.Duration
	// AcceptConfidence short-circuits the chain on the first result at or above it.
	AcceptConfidence float64
}

// budgeted strategies know how long one attempt on in may reasonably take.
type budgeted interface {
	Budget(in Input) time.Duration
}

func (c Config) normalize() Config {
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.AcceptConfidence <= 0 || c.AcceptConfidence > 1 {
		c.AcceptConfidence = 0.7
	}
	return c
}

// Stats are advisory running counters, reset on restart.
type Stats struct {
	Total          int                             `json:"total"`
	Failed         int                             `json:"failed"`
	ByMethod       map[domain.ExtractionMethod]int `json:"by_method"`
	MeanConfidence float64                         `json:"mean_confidence"`
}

type Service struct {
	strategies []Strategy
	cfg        Config
	logger     *slog.Logger

	mu      sync.Mutex
	stats   Stats
	confSum float64
}

// NewService keeps strategies in the given order; ties in prior confidence preserve it.
func NewService(cfg Config, logger *slog.Logger, strategies ...Strategy) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		strategies: strategies,
		cfg:        cfg.normalize(),
		logger:     logger,
		stats:      Stats{ByMethod: map[domain.ExtractionMethod]int{}},
	}
}

// Extract runs the chain; every attempt gets its own deadline and ctx bounds the whole run.
// The returned result always carries size and duration; on failure its method is "error" and
// err wraps ErrExtractionFailure.
func (s *Service) Extract(ctx context.Context, in Input) (domain.ExtractionResult, error) {
	in.MimeType = DetectMIME(in.Filename, in.MimeType, in.Data)
	start := time.Now()

	res, err := s.runChain(ctx, in)
	return s.finish(in, res, err, start)
}

// ExtractWith runs one named strategy without fallback.
func (s *Service) ExtractWith(ctx context.Context, name string, in Input) (domain.ExtractionResult, error) {
	in.MimeType = DetectMIME(in.Filename, in.MimeType, in.Data)
	start := time.Now()

	var strategy Strategy
	for _, st := range s.strategies {
		if st.Name() == name {
			strategy = st
			break
		}
	}
	if strategy == nil {
		return domain.ExtractionResult{}, domain.WrapError(domain.ErrInvalidInput, "extract with", fmt.Errorf("unknown strategy %q", name))
	}
	if !strategy.CanHandle(in) {
		return domain.ExtractionResult{}, domain.WrapError(domain.ErrInvalidInput, "extract with", fmt.Errorf("strategy %s cannot handle %s", name, in.MimeType))
	}

	res, err := s.attempt(ctx, strategy, in)
	if err == nil && strings.TrimSpace(res.Text) == "" {
		err = errors.New("no text extracted")
	}
	return s.finish(in, res, err, start)
}

func (s *Service) Strategies() []string {
	out := make([]string, len(s.strategies))
	for i, st := range s.strategies {
		out[i] = st.Name()
	}
	return out
}

func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.stats
	out.ByMethod = make(map[domain.ExtractionMethod]int, len(s.stats.ByMethod))
	for k, v := range s.stats.ByMethod {
		out.ByMethod[k] = v
	}
	return out
}

func (s *Service) runChain(ctx context.Context, in Input) (domain.ExtractionResult, error) {
	candidates := make([]Strategy, 0, len(s.strategies))
	for _, st := range s.strategies {
		if st.CanHandle(in) {
			candidates = append(candidates, st)
		}
	}
	if len(candidates) == 0 {
		return domain.ExtractionResult{}, fmt.Errorf("unsupported document type %s", in.MimeType)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence(in) > candidates[j].Confidence(in)
	})

	var (
		best     *domain.ExtractionResult
		reasons  []string
		warnings []string
	)
	for _, st := range candidates {
		res, err := s.attempt(ctx, st, in)
		warnings = append(warnings, res.Warnings...)
		if err != nil {
			reasons = append(reasons, st.Name()+": "+err.Error())
			s.logger.Info("extraction_fallback",
				slog.String("strategy", st.Name()),
				slog.String("filename", in.Filename),
				slog.String("error", err.Error()),
			)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if strings.TrimSpace(res.Text) == "" {
			reasons = append(reasons, st.Name()+": no text")
			continue
		}
		if best == nil || res.Confidence > best.Confidence {
			picked := res
			best = &picked
		}
		if res.Confidence >= s.cfg.AcceptConfidence {
			break
		}
		s.logger.Info("extraction_fallback",
			slog.String("strategy", st.Name()),
			slog.String("filename", in.Filename),
			slog.Float64("confidence", res.Confidence),
		)
	}

	if best == nil {
		if ctx.Err() != nil {
			reasons = append(reasons, "deadline: "+ctx.Err().Error())
		}
		return domain.ExtractionResult{Warnings: warnings}, errors.New(strings.Join(reasons, "; "))
	}
	best.Warnings = warnings
	return *best, nil
}

func (s *Service) attempt(ctx context.Context, st Strategy, in Input) (domain.ExtractionResult, error) {
	budget := s.cfg.Timeout
	if b, ok := st.(budgeted); ok {
		budget = max(budget, b.Budget(in))
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()
	return st.Extract(ctx, in)
}

func (s *Service) finish(in Input, res domain.ExtractionResult, err error, start time.Time) (domain.ExtractionResult, error) {
	res.SizeBytes = int64(len(in.Data))
	res.Duration = time.Since(start)
	if err != nil {
		res.Method = domain.MethodError
		res.Text = ""
		res.Confidence = 0
		res.Error = err.Error()
		err = domain.WrapError(domain.ErrExtractionFailure, "extract "+in.Filename, err)
	}
	s.record(res)
	return res, err
}

func (s *Service) record(res domain.ExtractionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Total++
	s.stats.ByMethod[res.Method]++
	if res.Method == domain.MethodError {
		s.stats.Failed++
		return
	}
	s.confSum += res.Confidence
	if ok := s.stats.Total - s.stats.Failed; ok > 0 {
		s.stats.MeanConfidence = s.confSum / float64(ok)
	}
}
