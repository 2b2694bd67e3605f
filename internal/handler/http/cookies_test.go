package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-login-portal/models"
)

func TestFlash_RoundTrip(t *testing.T) {
	h := newFixture(t).handler

	// first redirect queues one notice
	rec := httptest.NewRecorder()
	h.flash(rec, httptest.NewRequest(http.MethodPost, "/login", nil), notice(noticeWarning, "first"))
	queued := responseCookie(rec, flashCookieName)
	require.NotNil(t, queued)
	assert.True(t, queued.HttpOnly)

	// a second one on the same flash keeps the first in front
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(queued)
	rec = httptest.NewRecorder()
	h.flash(rec, req, notice(noticeInfo, "second"))
	queued = responseCookie(rec, flashCookieName)
	require.NotNil(t, queued)

	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(queued)
	rec = httptest.NewRecorder()
	got := h.consumeFlash(rec, req)

	assert.Equal(t, []models.Notice{
		{Category: noticeWarning, Message: "first"},
		{Category: noticeInfo, Message: "second"},
	}, got)
	expired := responseCookie(rec, flashCookieName)
	require.NotNil(t, expired)
	assert.Equal(t, -1, expired.MaxAge)
}

func TestFlash_NothingQueued(t *testing.T) {
	h := newFixture(t).handler

	rec := httptest.NewRecorder()
	h.flash(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Nil(t, responseCookie(rec, flashCookieName))

	rec = httptest.NewRecorder()
	assert.Empty(t, h.consumeFlash(rec, httptest.NewRequest(http.MethodGet, "/login", nil)))
	assert.Nil(t, responseCookie(rec, flashCookieName))
}

func TestReadFlash_MalformedCookieReadsEmpty(t *testing.T) {
	for _, value := range []string{"not base64!", "bm90IGpzb24"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: flashCookieName, Value: value})

		assert.Empty(t, readFlash(req), value)
	}
}

func TestTokenCookie(t *testing.T) {
	h := newFixture(t).handler

	rec := httptest.NewRecorder()
	h.setTokenCookie(rec, models.Token{SignedString: "signed"})
	set := responseCookie(rec, testCookieName)
	require.NotNil(t, set)
	assert.Equal(t, "signed", set.Value)
	assert.Equal(t, 7200, set.MaxAge)
	assert.Equal(t, "/", set.Path)
	assert.True(t, set.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, set.SameSite)

	rec = httptest.NewRecorder()
	h.clearTokenCookie(rec)
	cleared := responseCookie(rec, testCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, -1, cleared.MaxAge)
}
