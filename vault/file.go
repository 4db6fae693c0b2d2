package vault

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	session "github.com/wisal-platform/go-session"
)

// File persists the credential as a JSON document on disk. Reads of a
// missing, unreadable, or corrupt file yield an empty credential;
// writes are best effort. The file is chmod 0600, it holds a live
// bearer token.
type File struct {
	mu     sync.Mutex
	path   string
	logger session.Logger
}

// FileOption customizes the file vault.
type FileOption func(*File)

// WithFileLogger overrides the default logger.
func WithFileLogger(logger session.Logger) FileOption {
	return func(f *File) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFile returns a vault backed by the file at path.
func NewFile(path string, opts ...FileOption) *File {
	f := &File{path: path}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.logger == nil {
		f.logger = nopLogger{}
	}
	return f
}

func (f *File) Load(ctx context.Context) session.Credential {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn("credential file %s unreadable, starting anonymous: %v", f.path, err)
		}
		return session.Credential{}
	}

	var cred session.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		f.logger.Warn("credential file %s corrupt, starting anonymous: %v", f.path, err)
		return session.Credential{}
	}

	return cred
}

func (f *File) Store(ctx context.Context, cred session.Credential) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(cred)
	if err != nil {
		f.logger.Warn("credential serialization failed: %v", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		f.logger.Warn("credential dir unavailable, skipping persist: %v", err)
		return
	}

	// Write-then-rename so a crash mid-write never leaves a truncated
	// credential behind.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		f.logger.Warn("credential persist failed: %v", err)
		return
	}
	if err := os.Rename(tmp, f.path); err != nil {
		f.logger.Warn("credential persist failed: %v", err)
		_ = os.Remove(tmp)
	}
}

func (f *File) Clear(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		f.logger.Warn("credential clear failed for %s: %v", f.path, err)
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
