// Package localize runs the localize pipeline: validate, forward, normalize.
package localize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joost-contentoo/korsit-portal/internal/logger"
	"github.com/joost-contentoo/korsit-portal/internal/models"
	"github.com/joost-contentoo/korsit-portal/internal/normalize"
	"github.com/joost-contentoo/korsit-portal/internal/processing"
	"github.com/joost-contentoo/korsit-portal/internal/upstream"
	"github.com/joost-contentoo/korsit-portal/internal/validation"
)

const verboseBodyLimit = 8192

// Forwarder sends a normalized request to the localization webhook.
type Forwarder interface {
	Forward(ctx context.Context, req models.LocalizationRequest) (*upstream.Response, error)
}

// Service orchestrates one localization per call. It holds no per-request state.
type Service struct {
	fwd     Forwarder
	log     *slog.Logger
	verbose bool
}

// NewService builds a Service. verbose echoes unrecognized webhook fields to the caller.
func NewService(fwd Forwarder, log *slog.Logger, verbose bool) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{fwd: fwd, log: log, verbose: verbose}
}

// Localize validates body, forwards it and extracts the localized text.
//
// Errors are *validation.Error, upstream.ErrNotConfigured, upstream.ErrTimeout,
// upstream.ErrTransport, *upstream.StatusError or normalize.ErrInvalidFormat.
func (s *Service) Localize(ctx context.Context, body []byte) (*models.LocalizationResult, error) {
	req, err := validation.Localization(body)
	if err != nil {
		return nil, err
	}

	res, err := s.fwd.Forward(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("forward localization: %w", err)
	}

	payload, err := normalize.Decode(res.Body)
	if err != nil {
		attrs := []any{
			slog.Int("body_bytes", len(res.Body)),
			slog.String("body_fp", processing.Fingerprint(string(res.Body))),
		}
		if s.verbose {
			attrs = append(attrs, slog.String("body", processing.Abbreviate(string(res.Body), verboseBodyLimit)))
		}
		s.log.Error("webhook body is not JSON", attrs...)
		return nil, err
	}
	s.log.Info("webhook response decoded",
		slog.Int("status", res.StatusCode),
		slog.String("kind", payload.Kind.String()),
		slog.Duration("elapsed", res.Duration),
	)

	if text, ok := payload.Localized(); ok {
		return &models.LocalizationResult{LocalizedContent: text}, nil
	}
	if payload.Kind == normalize.KindString {
		return &models.LocalizationResult{LocalizedContent: payload.Text}, nil
	}

	s.log.Warn("unexpected webhook response format",
		slog.String("kind", payload.Kind.String()),
		slog.Int("fields", len(payload.Fields)),
	)
	result := &models.LocalizationResult{LocalizedContent: string(payload.Raw)}
	if s.verbose && payload.Kind == normalize.KindObject {
		result.Debug = payload.Fields
	}
	return result, nil
}
