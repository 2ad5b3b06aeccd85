package dataroom

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marmos91/dataroom/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutationLocks_Disabled(t *testing.T) {
	l := newMutationLocks(false)

	unlockA := l.lockParent("p")
	unlockB := l.lockParent("p")
	unlockTree := l.lockTree()

	unlockA()
	unlockB()
	unlockTree()
	assert.Zero(t, l.held())
}

func TestMutationLocks_ParentExcludes(t *testing.T) {
	l := newMutationLocks(true)

	unlock := l.lockParent("p")

	acquired := make(chan struct{})
	go func() {
		release := l.lockParent("p")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired a locked parent")
	case <-time.After(50 * time.Millisecond):
	}

	other := l.lockParent("q")
	other()

	unlock()
	<-acquired

	assert.Eventually(t, func() bool { return l.held() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMutationLocks_TreeWaitsForParents(t *testing.T) {
	l := newMutationLocks(true)
	unlock := l.lockParent("p")

	var treeHeld atomic.Bool
	done := make(chan struct{})
	go func() {
		release := l.lockTree()
		treeHeld.Store(true)
		release()
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, treeHeld.Load())

	unlock()
	<-done
	assert.True(t, treeHeld.Load())
}

func TestSerializeMutations_NoDuplicateUnderRace(t *testing.T) {
	ctx := context.Background()
	room, s := newTestRoom(t, Options{SerializeMutations: true})

	const workers = 16
	var wg sync.WaitGroup
	var successes atomic.Int32

	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := "Shared"
			if i%2 == 0 {
				name = "SHARED"
			}
			if room.Folders.CreateFolder(ctx, name, store.RootID).Success {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())

	all, err := s.GetAllItems(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Zero(t, room.Folders.locks.held())
}

func TestSerializeMutations_CascadeVersusCreate(t *testing.T) {
	ctx := context.Background()
	room, s := newTestRoom(t, Options{SerializeMutations: true})

	top := mustFolder(t, room, "Top", store.RootID)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			room.Folders.CreateFolder(ctx, fmt.Sprintf("child-%d", i), top.ID)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		room.Folders.DeleteFolder(ctx, top.ID)
	}()
	wg.Wait()

	// Either a child was created before the cascade and removed with it, or
	// it was rejected because its parent was gone. No orphan survives.
	all, err := s.GetAllItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
