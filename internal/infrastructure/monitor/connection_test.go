package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

type fakeSpool struct {
	fakePinger
	size int
}

func (f *fakeSpool) Len() (int, error) { return f.size, f.err }

func TestRefreshTracksStorageAvailability(t *testing.T) {
	storage := &fakePinger{}
	m := New(Targets{
		StorageDriver: "bolt",
		Storage:       storage,
		Buffer:        &fakeSpool{size: 3},
	}, 0, nil)

	status := m.Refresh()
	assert.True(t, status.Storage)
	assert.True(t, m.IsOnline())
	assert.False(t, status.RedisEnabled)
	assert.Equal(t, 3, status.BufferSize)
	assert.Equal(t, "bolt", m.GetStatus().StorageDriver)

	storage.err = errors.New("connection refused")
	m.Refresh()
	assert.False(t, m.IsOnline())
}

func TestRedisDoesNotAffectOnline(t *testing.T) {
	m := New(Targets{
		Storage: &fakePinger{},
		Redis:   &fakePinger{err: errors.New("down")},
	}, 0, nil)

	status := m.Refresh()
	assert.True(t, status.RedisEnabled)
	assert.False(t, status.Redis)
	assert.True(t, m.IsOnline())
	assert.False(t, status.Buffer)
}

func TestStopIsIdempotent(t *testing.T) {
	m := New(Targets{Storage: &fakePinger{}}, 0, nil)
	m.Start()
	m.Stop()
	m.Stop()
}
