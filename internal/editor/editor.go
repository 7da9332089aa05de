// Package editor implements the external-editor round trip: write a
// scoped temp file, spawn $EDITOR/$VISUAL on it, and detect whether its
// contents changed (spec §4.4, component D).
package editor

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrAborted is returned when the editor exits non-zero or cannot be
// found; callers surface this as spec's EditorAbort error class.
var ErrAborted = errors.New("editor: aborted")

// Bridge owns a dedicated per-process temp directory that every edit's
// scoped file is created under.
type Bridge struct {
	dir string
}

// New creates a Bridge with a fresh per-process temp directory.
func New() (*Bridge, error) {
	dir, err := os.MkdirTemp("", "kvnav-edit-*")
	if err != nil {
		return nil, fmt.Errorf("editor: create scratch dir: %w", err)
	}
	return &Bridge{dir: dir}, nil
}

// Close removes the Bridge's scratch directory and everything under it.
func (b *Bridge) Close() error {
	return os.RemoveAll(b.dir)
}

// Session tracks one in-flight edit between Prepare and Finalize, so the
// caller can run the editor process however it likes (synchronously, or
// handed to a terminal-suspending runner like Bubble Tea's
// tea.ExecProcess) and still get correct change detection and guaranteed
// temp-file release.
type Session struct {
	path   string
	before uint64
}

// Prepare writes current to a scoped temp file named after key (per §4.4,
// sanitized and extension-tagged by format) and returns the editor
// *exec.Cmd to run plus a Session to Finalize once it exits.
func (b *Bridge) Prepare(ctx context.Context, key string, current []byte, ext string) (*exec.Cmd, *Session, error) {
	path := filepath.Join(b.dir, sanitizeFilename(key)+ext)
	if err := os.WriteFile(path, current, 0o600); err != nil {
		return nil, nil, fmt.Errorf("editor: write temp file: %w", err)
	}

	cmd, args := resolveEditor()
	c := exec.CommandContext(ctx, cmd, append(args, path)...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr

	return c, &Session{path: path, before: hashOf(current)}, nil
}

// Finalize re-reads the temp file after the editor process has exited,
// removes it (guaranteeing release on every call), and returns the new
// contents if they differ from what was written, or nil if they don't
// (spec P8 in §8). runErr is the error (if any) returned by running the
// *exec.Cmd from Prepare; a non-nil runErr is always surfaced as
// ErrAborted and the temp file is still removed.
func (s *Session) Finalize(runErr error) ([]byte, error) {
	defer os.Remove(s.path)

	if runErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrAborted, runErr)
	}

	after, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("editor: re-read temp file: %w", err)
	}

	if hashOf(after) == s.before {
		return nil, nil // no change
	}
	return after, nil
}

// Edit is the synchronous convenience form of Prepare+Run+Finalize, used
// by callers (and tests) that don't need a terminal-suspending runner.
func (b *Bridge) Edit(ctx context.Context, key string, current []byte, ext string) ([]byte, error) {
	cmd, session, err := b.Prepare(ctx, key, current, ext)
	if err != nil {
		return nil, err
	}
	runErr := cmd.Run()
	return session.Finalize(runErr)
}

// sanitizeFilename keeps only alphanumerics, '-', and '_' from key,
// truncated to 50 characters, per spec §4.4.
func sanitizeFilename(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
		if b.Len() >= 50 {
			break
		}
	}
	name := b.String()
	if name == "" {
		name = "value"
	}
	return name
}

func hashOf(b []byte) uint64 {
	h := fnv.New64a()
	h.Write(b)
	return h.Sum64()
}

// resolveEditor picks $EDITOR, then $VISUAL, then a platform default
// (spec §6: "vi on Unix, notepad on Windows").
func resolveEditor() (string, []string) {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			parts := strings.Fields(v)
			return parts[0], parts[1:]
		}
	}
	if runtime.GOOS == "windows" {
		return "notepad", nil
	}
	return "vi", nil
}

// ExtensionFor maps a detected format label to the temp file extension
// spec §4.4 asks for.
func ExtensionFor(label string) string {
	switch label {
	case "JSON":
		return ".json"
	case "XML":
		return ".xml"
	default:
		return ".txt"
	}
}
