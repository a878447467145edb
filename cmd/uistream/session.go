package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/fwojciec/uistream"
	uijson "github.com/fwojciec/uistream/json"
	"github.com/google/uuid"
)

// loadSession reads the session at path. A missing file or an empty path
// starts a new session.
func loadSession(path string) (uistream.Session, error) {
	if path != "" {
		s, err := uijson.Load(path)
		switch {
		case err == nil:
			return s, nil
		case !errors.Is(err, fs.ErrNotExist):
			return uistream.Session{}, fmt.Errorf("load session: %w", err)
		}
	}
	now := time.Now()
	return uistream.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// saveSession stores messages into s at path. It does nothing without a
// path.
func saveSession(path string, s uistream.Session, messages []uistream.Message) error {
	if path == "" {
		return nil
	}
	s.Messages = messages
	s.UpdatedAt = time.Now()
	if err := uijson.Save(path, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
