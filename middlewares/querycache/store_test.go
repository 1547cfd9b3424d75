package querycache

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()
	typ := reflect.TypeOf(TestModel{})

	_, err := store.Get(ctx, "missing", typ)
	assert.Equal(t, ErrKeyNotFound, err)

	want := &TestModel{Id: 1, FirstName: "Tom"}
	require.NoError(t, store.Set(ctx, "key", want, time.Minute))
	got, err := store.Get(ctx, "key", typ)
	require.NoError(t, err)
	// 内存实现直接存取原对象
	assert.Same(t, want, got)
}

func TestMemoryStore_Expiration(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()
	typ := reflect.TypeOf(TestModel{})

	require.NoError(t, store.Set(ctx, "key", &TestModel{Id: 1}, time.Millisecond))
	time.Sleep(time.Millisecond * 10)
	_, err := store.Get(ctx, "key", typ)
	assert.Equal(t, ErrKeyNotFound, err)
}
