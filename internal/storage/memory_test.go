package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glucoguide/insulin-tracker/internal/domain"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "k", []byte("v1")))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, store.Set(ctx, "k", []byte("v2")))
	got, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, store.Remove(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// removing an absent key is not an error
	require.NoError(t, store.Remove(ctx, "k"))
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	value := []byte("original")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'X'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)

	got[0] = 'Y'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.SetTTL(ctx, "k", []byte("v"), 20*time.Millisecond))
	_, err := store.Get(ctx, "k")
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpiryKeepsConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// A Get that finds an expired entry must not discard a value written
	// between its read and its delete.
	for i := 0; i < 200; i++ {
		require.NoError(t, store.SetTTL(ctx, "k", []byte("stale"), time.Nanosecond))
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.Get(ctx, "k")
		}()
		go func() {
			defer wg.Done()
			_ = store.Set(ctx, "k", []byte("fresh"))
		}()
		wg.Wait()

		got, err := store.Get(ctx, "k")
		require.NoError(t, err, "iteration %d", i)
		assert.Equal(t, []byte("fresh"), got)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	in := []domain.Injection{{ID: "a", Type: domain.RapidActing, Units: 4}}
	require.NoError(t, SetJSON(ctx, store, "injections", in))

	var out []domain.Injection
	require.NoError(t, GetJSON(ctx, store, "injections", &out))
	assert.Equal(t, in, out)

	err := GetJSON(ctx, store, "missing", &out)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "broken", []byte("{not json")))
	err = GetJSON(ctx, store, "broken", &out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestKeysAreCaseStable(t *testing.T) {
	assert.Equal(t, PatientsKey("DrA"), PatientsKey("dra"))
	assert.Equal(t, LastPatientKey("DrA"), LastPatientKey("dra"))
	assert.Equal(t, InjectionsKey("John (DrA)"), InjectionsKey("john (dra)"))
	assert.Equal(t, ScheduledDoseKey("John (DrA)"), ScheduledDoseKey("john (dra)"))
	assert.Equal(t, "session_abc", SessionKey("abc"))
}
