package upstream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/joost-contentoo/korsit-portal/internal/config"
	"github.com/joost-contentoo/korsit-portal/internal/logger"
	"github.com/joost-contentoo/korsit-portal/internal/models"
	"github.com/joost-contentoo/korsit-portal/internal/processing"
)

const verboseBodyLimit = 8192

var (
	// ErrNotConfigured is returned before any I/O when the webhook URL is unusable.
	ErrNotConfigured = config.ErrWebhookNotConfigured
	// ErrTimeout reports that the call exceeded its deadline and was aborted.
	ErrTimeout = errors.New("upstream timeout")
	// ErrTransport reports any other failure to complete the call.
	ErrTransport = errors.New("upstream unreachable")
)

// StatusError carries a non-2xx webhook response verbatim.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream responded %d %s", e.StatusCode, e.StatusText())
}

// StatusText is the reason phrase of the response, e.g. "Bad Gateway".
func (e *StatusError) StatusText() string {
	text := strings.TrimSpace(strings.TrimPrefix(e.Status, strconv.Itoa(e.StatusCode)))
	if text == "" {
		text = http.StatusText(e.StatusCode)
	}
	return text
}

// Response is a successful webhook response.
type Response struct {
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Client forwards localization requests to the webhook.
type Client struct {
	http    *resty.Client
	url     string
	timeout time.Duration
	verbose bool
	log     *slog.Logger
}

// New validates cfg and builds a Client. It returns ErrNotConfigured when
// the webhook URL is missing or malformed.
func New(cfg config.Upstream, log *slog.Logger) (*Client, error) {
	u, err := config.ParseWebhookURL(cfg.WebhookURL)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("upstream timeout must be positive, got %s", cfg.Timeout)
	}
	if log == nil {
		log = logger.Discard()
	}

	hc := resty.New().
		SetRetryCount(0).
		SetLogger(restyLogger{log: log}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:    hc,
		url:     u.String(),
		timeout: cfg.Timeout,
		verbose: cfg.VerboseLogging,
		log:     log,
	}, nil
}

// Forward performs exactly one POST of req to the webhook.
func (c *Client) Forward(ctx context.Context, req models.LocalizationRequest) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := middleware.GetReqID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	stats := processing.Describe(req.BlogContent)
	log := c.log.With(
		slog.String("request_id", requestID),
		slog.String("content_fp", stats.Fingerprint),
	)
	log.Info("forwarding to webhook",
		slog.Int("content_bytes", stats.Bytes),
		slog.Int("content_words", stats.Words),
		slog.Int("content_headings", stats.Headings),
		slog.Duration("timeout", c.timeout),
	)
	if c.verbose {
		log.Info("webhook payload",
			slog.String("blog_content", processing.Abbreviate(req.BlogContent, verboseBodyLimit)),
			slog.String("seo_context", req.SEOContext),
			slog.String("additional_instructions", req.AdditionalInstructions),
			slog.Int("style_guide_bytes", len(req.StyleGuide)),
			slog.Int("glossary_bytes", len(req.Glossary)),
		)
	}

	start := time.Now()
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", requestID).
		SetBody(req).
		Post(c.url)
	elapsed := time.Since(start)

	if err != nil {
		if isTimeout(ctx, err) {
			log.Error("webhook call timed out", slog.Duration("elapsed", elapsed))
			return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		log.Error("webhook call failed", slog.Any("err", err), slog.Duration("elapsed", elapsed))
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	body := res.Body()
	log.Info("webhook responded",
		slog.Int("status", res.StatusCode()),
		slog.Int("body_bytes", len(body)),
		slog.Duration("elapsed", elapsed),
	)

	if !res.IsSuccess() {
		attrs := []any{slog.Int("status", res.StatusCode()), slog.String("status_text", res.Status())}
		if c.verbose {
			attrs = append(attrs, slog.String("body", processing.Abbreviate(string(body), verboseBodyLimit)))
		}
		log.Warn("webhook rejected request", attrs...)
		return nil, &StatusError{StatusCode: res.StatusCode(), Status: res.Status(), Body: body}
	}

	if c.verbose {
		log.Info("webhook response body", slog.String("body", processing.Abbreviate(string(body), verboseBodyLimit)))
	}

	return &Response{StatusCode: res.StatusCode(), Body: body, Duration: elapsed}, nil
}

// Disabled stands in for a Client that could not be configured. It never
// performs I/O and reports the configuration error on every call.
type Disabled struct {
	Err error
}

// Forward reports the configuration error without performing I/O.
func (d Disabled) Forward(context.Context, models.LocalizationRequest) (*Response, error) {
	switch {
	case d.Err == nil:
		return nil, ErrNotConfigured
	case errors.Is(d.Err, ErrNotConfigured):
		return nil, d.Err
	default:
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, d.Err)
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

type restyLogger struct {
	log *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "resty"))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "resty"))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "resty"))
}
