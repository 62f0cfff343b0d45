package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gmapscrape/internal/browser"
)

type stubScraper struct{ name string }

func (s stubScraper) Name() string { return s.name }

func (s stubScraper) Scrape(context.Context, *browser.Session, string, Options) (Content, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	Register(stubScraper{name: "Test.Stub"})
	t.Cleanup(func() { delete(registry, "test.stub") })

	s, ok := Get("test.stub")
	require.True(t, ok)
	require.Equal(t, "Test.Stub", s.Name())

	_, ok = Get("TEST.STUB")
	require.True(t, ok)

	_, ok = Get("missing")
	require.False(t, ok)

	require.Contains(t, Names(), "test.stub")
}

func TestNamesSorted(t *testing.T) {
	Register(stubScraper{name: "zz"})
	Register(stubScraper{name: "aa"})
	t.Cleanup(func() {
		delete(registry, "zz")
		delete(registry, "aa")
	})

	names := Names()
	require.IsIncreasing(t, names)
}
