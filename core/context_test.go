package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestContextConcurrentAccess tests that the user can be read from a context concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := WithUser(context.Background(), "alice")

	const numGoroutines = 50
	var wg sync.WaitGroup
	for i := range numGoroutines {
		wg.Go(func() {
			user, ok := UserFrom(ctx)
			assert.True(t, ok, "Goroutine %d: UserFrom should find a user", i)
			assert.Equal(t, "alice", user, "Goroutine %d", i)
		})
	}
	wg.Wait()
}

// TestContextIsolation tests that derived contexts keep their own user.
func TestContextIsolation(t *testing.T) {
	base := context.Background()
	alice := WithUser(base, "alice")
	bob := WithUser(alice, "bob")

	user, ok := UserFrom(alice)
	assert.True(t, ok)
	assert.Equal(t, "alice", user)

	user, ok = UserFrom(bob)
	assert.True(t, ok)
	assert.Equal(t, "bob", user)

	_, ok = UserFrom(base)
	assert.False(t, ok)
}

func TestUserFrom_Empty(t *testing.T) {
	user, ok := UserFrom(WithUser(context.Background(), ""))
	assert.False(t, ok)
	assert.Empty(t, user)
}
