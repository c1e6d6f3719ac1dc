package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/verroute/internal/extractor"
	"github.com/vyrodovalexey/verroute/internal/util"
	"github.com/vyrodovalexey/verroute/internal/version"
)

type recordingObserver struct {
	mu        sync.Mutex
	matched   []string
	noMatch   []string
	malformed []string
}

func (o *recordingObserver) OnMatched(route string, sel Selection) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.matched = append(o.matched, route+"="+sel.Handler().ID)
}

func (o *recordingObserver) OnNoMatch(route string, rv extractor.RequestVersionContext) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.noMatch = append(o.noMatch, route+"="+rv.Version)
}

func (o *recordingObserver) OnMalformed(route string, v string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.malformed = append(o.malformed, v)
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	entries := entriesFor(t,
		versioned("v1", spec("1.0")),
		versioned("v2", spec("2.0")),
	)
	obs := &recordingObserver{}
	res := NewResolver(extractor.New(extractor.DefaultConfig()), WithObserver(obs))

	req := httptest.NewRequest(http.MethodGet, "/p?version=2.0", nil)
	h, err := res.Resolve(entries, extractor.NewHTTPAccessor(req))
	require.NoError(t, err)
	assert.Equal(t, "v2", h.ID)

	req = httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("X-Api-Version", "ignored")
	req.Header.Set("apiVersion", "1.5")
	h, err = res.Resolve(entries, extractor.NewHTTPAccessor(req))
	require.NoError(t, err)
	assert.Equal(t, "v1", h.ID)

	assert.Equal(t, []string{"GET /p=v2", "GET /p=v1"}, obs.matched)
}

func TestResolver_NoMatch(t *testing.T) {
	t.Parallel()

	entries := entriesFor(t, versioned("v2", spec("2.0", "ios")))
	obs := &recordingObserver{}
	res := NewResolver(extractor.New(extractor.DefaultConfig()), WithObserver(obs))

	req := httptest.NewRequest(http.MethodGet, "/p?version=1.0&platform=android", nil)
	_, err := res.Resolve(entries, extractor.NewHTTPAccessor(req))
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrNoMatch))
	assert.True(t, errors.Is(err, util.ErrNotFound))

	var nm *NoMatchError
	require.True(t, errors.As(err, &nm))
	assert.Equal(t, "GET /p", nm.Route)
	assert.Equal(t, "1.0", nm.Version)
	assert.Equal(t, "android", nm.Group)
	assert.Equal(t, "no compatible version for GET /p (version: 1.0, group: android)", nm.Error())

	assert.Equal(t, []string{"GET /p=1.0"}, obs.noMatch)
}

func TestResolver_MalformedVersionDegradesToNoMatch(t *testing.T) {
	t.Parallel()

	entries := entriesFor(t, versioned("v1", spec("1.0")))
	obs := &recordingObserver{}
	res := NewResolver(extractor.New(extractor.DefaultConfig()), WithObserver(obs))

	req := httptest.NewRequest(http.MethodGet, "/p?version=1.2.3.4.5", nil)
	_, err := res.Resolve(entries, extractor.NewHTTPAccessor(req))
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.Equal(t, []string{"1.2.3.4.5"}, obs.malformed)
}

func TestResolver_DefaultVersion(t *testing.T) {
	t.Parallel()

	entries := entriesFor(t,
		versioned("v1", spec("1.0")),
		versioned("v2", spec("2.0")),
	)
	res := NewResolver(extractor.New(extractor.Config{DefaultVersion: "1.0"}))

	sel, err := res.Select(entries, extractor.MapAccessor{})
	require.NoError(t, err)
	assert.Equal(t, "v1", sel.Handler().ID)
	assert.True(t, sel.Request.Defaulted)
}

func TestResolver_Options(t *testing.T) {
	t.Parallel()

	entries := entriesFor(t,
		versioned("v1.9", spec("1.9")),
		versioned("v1.10", spec("1.10")),
	)

	res := NewResolver(
		extractor.New(extractor.Config{CaseSensitive: true}),
		WithComparator(version.NumericComparator{}),
		WithGroupEqual(extractor.EqualFold),
	)
	assert.NotNil(t, res.Engine())

	sel, err := res.Select(entries, extractor.MapAccessor{Query: map[string][]string{"version": {"1.10"}}})
	require.NoError(t, err)
	assert.Equal(t, "v1.10", sel.Handler().ID)
}

func TestNoMatchError_NoVersion(t *testing.T) {
	t.Parallel()

	err := &NoMatchError{Route: "GET /p"}
	assert.Equal(t, "no compatible version for GET /p (version: none)", err.Error())
	assert.True(t, err.Is(&NoMatchError{}))
}

func TestResolver_ConcurrentUse(t *testing.T) {
	t.Parallel()

	entries := entriesFor(t,
		versioned("v1", spec("1.0")),
		versioned("v2", spec("2.0")),
	)
	res := NewResolver(extractor.New(extractor.DefaultConfig()))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, want := "1.5", "v1"
			if i%2 == 0 {
				v, want = "2.5", "v2"
			}
			for j := 0; j < 100; j++ {
				h, err := res.Resolve(entries, extractor.MapAccessor{Query: map[string][]string{"version": {v}}})
				assert.NoError(t, err)
				assert.Equal(t, want, h.ID)
			}
		}(i)
	}
	wg.Wait()
}
