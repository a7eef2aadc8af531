package localize_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joost-contentoo/korsit-portal/internal/localize"
	"github.com/joost-contentoo/korsit-portal/internal/models"
	"github.com/joost-contentoo/korsit-portal/internal/normalize"
	"github.com/joost-contentoo/korsit-portal/internal/upstream"
	"github.com/joost-contentoo/korsit-portal/internal/validation"
)

type stubForwarder struct {
	body  string
	err   error
	calls []models.LocalizationRequest
}

func (s *stubForwarder) Forward(_ context.Context, req models.LocalizationRequest) (*upstream.Response, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return &upstream.Response{StatusCode: 200, Body: []byte(s.body)}, nil
}

func TestLocalizeScenario(t *testing.T) {
	fwd := &stubForwarder{body: `{"localized_content": "# Hallo\n\nWelt."}`}
	svc := localize.NewService(fwd, nil, false)

	res, err := svc.Localize(context.Background(), []byte(`{"blog_content":"# Hello\n\nWorld."}`))
	require.NoError(t, err)
	require.Equal(t, "# Hallo\n\nWelt.", res.LocalizedContent)
	require.Len(t, fwd.calls, 1)
	require.Equal(t, "# Hello\n\nWorld.", fwd.calls[0].BlogContent)
}

func TestLocalizeValidationSkipsUpstream(t *testing.T) {
	for _, body := range []string{`{}`, `{"blog_content":""}`, `{"blog_content":"   "}`, `{"blog_content":7}`} {
		fwd := &stubForwarder{body: `"unused"`}
		_, err := localize.NewService(fwd, nil, false).Localize(context.Background(), []byte(body))

		var verr *validation.Error
		require.True(t, errors.As(err, &verr), body)
		require.Empty(t, fwd.calls, body)
	}
}

func TestLocalizeBareString(t *testing.T) {
	fwd := &stubForwarder{body: `"Hallo Welt"`}
	res, err := localize.NewService(fwd, nil, false).Localize(context.Background(), []byte(`{"blog_content":"Hello"}`))
	require.NoError(t, err)
	require.Equal(t, "Hallo Welt", res.LocalizedContent)
}

func TestLocalizeUnknownShapeFallsBackToRawJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "empty object", body: `{}`, want: `{}`},
		{name: "unknown keys", body: `{ "result": "Hallo", "n": 1 }`, want: `{"result":"Hallo","n":1}`},
		{name: "array", body: `["Hallo"]`, want: `["Hallo"]`},
		{name: "null", body: `null`, want: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := localize.NewService(&stubForwarder{body: tt.body}, nil, false).
				Localize(context.Background(), []byte(`{"blog_content":"Hello"}`))
			require.NoError(t, err)
			require.Equal(t, tt.want, res.LocalizedContent)
			require.Nil(t, res.Debug)
		})
	}
}

func TestLocalizeVerboseEchoesFields(t *testing.T) {
	fwd := &stubForwarder{body: `{"result":"Hallo","n":1}`}
	res, err := localize.NewService(fwd, nil, true).Localize(context.Background(), []byte(`{"blog_content":"Hello"}`))
	require.NoError(t, err)
	require.Equal(t, `{"result":"Hallo","n":1}`, res.LocalizedContent)
	require.Len(t, res.Debug, 2)
	require.JSONEq(t, `"Hallo"`, string(res.Debug["result"]))
}

func TestLocalizeInvalidUpstreamJSON(t *testing.T) {
	fwd := &stubForwarder{body: `Hallo Welt`}
	_, err := localize.NewService(fwd, nil, false).Localize(context.Background(), []byte(`{"blog_content":"Hello"}`))
	require.Error(t, err)
	require.True(t, errors.Is(err, normalize.ErrInvalidFormat))
}

func TestLocalizePropagatesUpstreamErrors(t *testing.T) {
	statusErr := &upstream.StatusError{StatusCode: 502, Status: "502 Bad Gateway"}
	for _, upstreamErr := range []error{upstream.ErrTimeout, upstream.ErrTransport, upstream.ErrNotConfigured, statusErr} {
		fwd := &stubForwarder{err: upstreamErr}
		_, err := localize.NewService(fwd, nil, false).Localize(context.Background(), []byte(`{"blog_content":"Hello"}`))
		require.Error(t, err)
		require.True(t, errors.Is(err, upstreamErr))
	}
}

func TestLocalizeInvalidJSONLogsBodyOnlyWhenVerbose(t *testing.T) {
	for _, verbose := range []bool{true, false} {
		var buf bytes.Buffer
		log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
		fwd := &stubForwarder{body: `RAW-NOT-JSON`}

		_, err := localize.NewService(fwd, log, verbose).Localize(context.Background(), []byte(`{"blog_content":"Hello"}`))
		require.True(t, errors.Is(err, normalize.ErrInvalidFormat))

		require.Contains(t, buf.String(), "webhook body is not JSON")
		if verbose {
			require.Contains(t, buf.String(), "RAW-NOT-JSON")
		} else {
			require.NotContains(t, buf.String(), "RAW-NOT-JSON")
		}
	}
}
