package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// HybridStats counts conversions by outcome.
type HybridStats struct {
	Attempts        int
	PrimarySuccess  int
	FallbackSuccess int
	Failures        int
}

// Hybrid tries Primary and falls back to Fallback when Primary is missing
// or fails.
type Hybrid struct {
	Primary  DraftConverter
	Fallback DraftConverter
	Logger   *slog.Logger

	mu    sync.Mutex
	stats HybridStats
}

// NewHybrid creates a hybrid converter. Either side may be nil.
func NewHybrid(primary, fallback DraftConverter, logger *slog.Logger) *Hybrid {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hybrid{Logger: logger}
	// a typed nil pointer must not count as a converter
	if !isNil(primary) {
		h.Primary = primary
	}
	if !isNil(fallback) {
		h.Fallback = fallback
	}
	return h
}

func isNil(c DraftConverter) bool {
	switch v := c.(type) {
	case nil:
		return true
	case *LibreOffice:
		return v == nil
	case *Basic:
		return v == nil
	}
	return false
}

// Name implements DraftConverter.
func (h *Hybrid) Name() string { return KindHybrid }

// Available implements DraftConverter.
func (h *Hybrid) Available(ctx context.Context) error {
	var errs []error
	for _, c := range []DraftConverter{h.Primary, h.Fallback} {
		if c == nil {
			continue
		}
		err := c.Available(ctx)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return fmt.Errorf("no converters configured: %w", ErrConverterUnavailable)
	}
	return errors.Join(errs...)
}

// Convert implements DraftConverter.
func (h *Hybrid) Convert(ctx context.Context, pdfPath, outDir string) (string, error) {
	h.count(func(s *HybridStats) { s.Attempts++ })

	var errs []error
	if h.Primary != nil {
		if err := h.Primary.Available(ctx); err != nil {
			h.Logger.Info("primary converter unavailable, using fallback", "converter", h.Primary.Name(), "error", err)
			errs = append(errs, err)
		} else if path, err := h.Primary.Convert(ctx, pdfPath, outDir); err != nil {
			h.Logger.Warn("primary converter failed", "converter", h.Primary.Name(), "error", err)
			errs = append(errs, err)
		} else {
			h.count(func(s *HybridStats) { s.PrimarySuccess++ })
			return path, nil
		}
	}

	if h.Fallback != nil {
		path, err := h.Fallback.Convert(ctx, pdfPath, outDir)
		if err == nil {
			h.count(func(s *HybridStats) { s.FallbackSuccess++ })
			h.Logger.Info("fallback draft used", "converter", h.Fallback.Name())
			return path, nil
		}
		errs = append(errs, err)
	}

	h.count(func(s *HybridStats) { s.Failures++ })
	if len(errs) == 0 {
		return "", fmt.Errorf("no converters configured: %w", ErrConverterUnavailable)
	}
	return "", fmt.Errorf("all converters failed: %w", errors.Join(errs...))
}

// Stats returns a snapshot of the conversion counters.
func (h *Hybrid) Stats() HybridStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}

func (h *Hybrid) count(f func(*HybridStats)) {
	h.mu.Lock()
	f(&h.stats)
	h.mu.Unlock()
}
