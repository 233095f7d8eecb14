package presets

import (
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wr-burden-mcp-server/internal/domain"
	"github.com/wr-burden-mcp-server/internal/logging"
)

func TestRefresher_WatchReloadsOnWrite(t *testing.T) {
	path := writeCatalog(t, sampleCatalog)
	c := newTestCatalog(t)
	src := NewFileSource(path)

	r, err := StartRefresher(c, src, domain.PresetsConfig{Watch: true, Timeout: time.Second}, logging.Discard())
	require.NoError(t, err)
	require.NotNil(t, r)
	defer r.Stop()

	updated := `{"version":"2.0.0","presets":[{"id":1,"jobName":"Scaffolder","category":"Construction","weight":2000,"squatting":90}]}`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	assert.Eventually(t, func() bool {
		return c.Meta().Version == "2.0.0"
	}, 5*time.Second, 50*time.Millisecond)

	p, err := c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Scaffolder", p.JobName)
}

func TestRefresher_Schedule(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(sampleCatalog))
	}))
	defer srv.Close()

	cfg := domain.PresetsConfig{Source: srv.URL, Timeout: time.Second, RateLimit: 100, RefreshSchedule: "@every 1s"}
	c := newTestCatalog(t)
	src := NewSource(cfg, logging.Discard())

	r, err := StartRefresher(c, src, cfg, logging.Discard())
	require.NoError(t, err)
	require.NotNil(t, r)
	defer r.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&hits) >= 1 && c.Meta().Version == "1.2.0"
	}, 5*time.Second, 50*time.Millisecond)
}

func TestStartRefresher_NothingToDo(t *testing.T) {
	c := newTestCatalog(t)

	r, err := StartRefresher(c, nil, domain.PresetsConfig{Watch: true}, logging.Discard())
	assert.NoError(t, err)
	assert.Nil(t, r)

	r, err = StartRefresher(c, NewFileSource("x.json"), domain.PresetsConfig{}, logging.Discard())
	assert.NoError(t, err)
	assert.Nil(t, r)
}

func TestStartRefresher_InvalidSchedule(t *testing.T) {
	c := newTestCatalog(t)

	_, err := StartRefresher(c, NewFileSource("x.json"), domain.PresetsConfig{RefreshSchedule: "every tuesday"}, logging.Discard())
	assert.Error(t, err)
}
