package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/laerciomonteiro/escutasegura/backend/internal/models"
	"github.com/laerciomonteiro/escutasegura/backend/internal/telegram"
)

type fakeStats struct {
	reports int
	err     error
}

func (f *fakeStats) Compute(context.Context) (*models.Stats, error) { return &models.Stats{}, nil }

func (f *fakeStats) Report(context.Context) error {
	f.reports++
	return f.err
}

func webhook(t *testing.T, stats *fakeStats, secret, header, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	NewTelegramController(stats, "-100777", secret, zap.NewNop()).Register(e.Group("/api"))

	req := httptest.NewRequest(http.MethodPost, "/api/telegram/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if header != "" {
		req.Header.Set(telegram.SecretTokenHeader, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const statsFromOperator = `{"update_id":1,"message":{"message_id":2,"chat":{"id":-100777},"text":"/stats"}}`

func TestWebhook_StatsFromOperatorChat(t *testing.T) {
	stats := &fakeStats{}
	rec := webhook(t, stats, "", "", statsFromOperator)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, stats.reports)
}

func TestWebhook_IgnoredUpdates(t *testing.T) {
	bodies := map[string]string{
		"other chat":  `{"message":{"chat":{"id":42},"text":"/stats"}}`,
		"other cmd":   `{"message":{"chat":{"id":-100777},"text":"/start"}}`,
		"no message":  `{"update_id":3}`,
		"plain text":  `{"message":{"chat":{"id":-100777},"text":"stats"}}`,
		"broken json": `{"message":`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			stats := &fakeStats{}
			rec := webhook(t, stats, "", "", body)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Zero(t, stats.reports)
		})
	}
}

func TestWebhook_ReportFailureStillOK(t *testing.T) {
	stats := &fakeStats{err: errors.New("store down")}
	rec := webhook(t, stats, "", "", statsFromOperator)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, stats.reports)
}

func TestWebhook_SecretToken(t *testing.T) {
	stats := &fakeStats{}

	rec := webhook(t, stats, "s3cret", "wrong", statsFromOperator)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, stats.reports)

	rec = webhook(t, stats, "s3cret", "s3cret", statsFromOperator)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, stats.reports)
}
