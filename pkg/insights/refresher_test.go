package insights

import (
	"context"
	"testing"

	"github.com/harun/chronicle/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresherLifecycle(t *testing.T) {
	refresher := NewRefresher(New(&fakeSource{}), "* * * * *")

	require.NoError(t, refresher.Start())
	assert.Error(t, refresher.Start(), "second start should fail")

	require.NoError(t, refresher.Stop())
	assert.Error(t, refresher.Stop(), "second stop should fail")
}

func TestRefresherInvalidSchedule(t *testing.T) {
	refresher := NewRefresher(New(&fakeSource{}), "not a cron expression")

	assert.Error(t, refresher.Start())
}

func TestRefreshNow(t *testing.T) {
	src := &fakeSource{
		infos: []session.SessionInfo{
			describedInfo("s1", "/a", tokens(10), "2025-06-10 08:00:00 UTC"),
		},
	}

	refresher := NewRefresher(New(src), "")
	assert.NoError(t, refresher.RefreshNow(context.Background()))
}

func TestRefreshNowPropagatesCatalogError(t *testing.T) {
	src := &fakeSource{listErr: session.ErrStorage}

	refresher := NewRefresher(New(src), "")
	assert.ErrorIs(t, refresher.RefreshNow(context.Background()), session.ErrStorage)
}
