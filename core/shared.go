package core

import (
	"errors"
	"io"
	"sync"
)

var (
	sharedMu      sync.Mutex
	sharedService Authorizer
	sharedFactory = defaultSharedFactory
)

func defaultSharedFactory() (Authorizer, error) {
	return NewService(DefaultConfig())
}

// Shared returns the process-wide authorizer, building it on first use.
// The factory runs without holding the lock. When concurrent first calls race,
// the first instance stored wins and the others are closed, so every caller
// observes the same instance.
func Shared() (Authorizer, error) {
	sharedMu.Lock()
	if current := sharedService; current != nil {
		sharedMu.Unlock()
		return current, nil
	}
	factory := sharedFactory
	sharedMu.Unlock()

	built, err := factory()
	if err != nil {
		return nil, err
	}
	if built == nil {
		return nil, errors.New("core: shared factory returned nil authorizer")
	}

	sharedMu.Lock()
	winner := sharedService
	if winner == nil {
		sharedService = built
		winner = built
	}
	sharedMu.Unlock()

	if winner != built {
		closeAuthorizer(built)
	}
	return winner, nil
}

// SetShared replaces the process-wide authorizer. Passing nil resets it so the
// next Shared call builds a fresh one. The replaced instance is closed when it
// implements io.Closer.
func SetShared(authorizer Authorizer) error {
	sharedMu.Lock()
	previous := sharedService
	sharedService = authorizer
	sharedMu.Unlock()

	if previous == nil || previous == authorizer {
		return nil
	}
	return closeAuthorizer(previous)
}

func closeAuthorizer(authorizer Authorizer) error {
	if closer, ok := authorizer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SetSharedFactory changes how Shared builds the instance when none is set.
// A nil factory restores the default. The factory may call SetShared, in
// which case the instance it installed is kept and the built one is closed.
// It must not call Shared or NewSharedFacade, which would build again.
func SetSharedFactory(factory func() (Authorizer, error)) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if factory == nil {
		factory = defaultSharedFactory
	}
	sharedFactory = factory
}
