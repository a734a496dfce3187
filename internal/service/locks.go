package service

import (
	"sync"

	"github.com/google/uuid"
)

// storyLocks выдает мьютекс на каждую историю. Слияние результатов категорий
// и запись статуса выполняются строго под этим мьютексом: история — один
// писатель, сколько бы категорий ни завершилось одновременно.
type storyLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newStoryLocks() *storyLocks {
	return &storyLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *storyLocks) get(storyID uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[storyID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[storyID] = lock
	}
	return lock
}
