package editor

import (
	"context"
	"os"
	"runtime"
	"testing"
)

func withFakeEditor(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake-editor shell script requires a POSIX shell")
	}
	dir := t.TempDir()
	path := dir + "/fake-editor.sh"
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write fake editor: %v", err)
	}
	t.Setenv("EDITOR", path)
}

// TestEdit_P8_NoOpDetection: if the editor exits without changing the
// file, Edit must return nil, nil.
func TestEdit_P8_NoOpDetection(t *testing.T) {
	withFakeEditor(t, "exit 0") // touches nothing

	b, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer b.Close()

	got, err := b.Edit(context.Background(), "mykey", []byte("hello"), ".txt")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if got != nil {
		t.Fatalf("Edit() = %q, want nil (no change)", got)
	}
}

func TestEdit_DetectsChange(t *testing.T) {
	withFakeEditor(t, `echo -n "changed" > "$1"`)

	b, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer b.Close()

	got, err := b.Edit(context.Background(), "mykey", []byte("hello"), ".txt")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if string(got) != "changed" {
		t.Fatalf("Edit() = %q, want %q", got, "changed")
	}
}

func TestEdit_NonZeroExitIsAborted(t *testing.T) {
	withFakeEditor(t, "exit 7")

	b, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer b.Close()

	_, err = b.Edit(context.Background(), "mykey", []byte("hello"), ".txt")
	if err == nil {
		t.Fatal("expected ErrAborted, got nil")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"user:1:name":     "user1name",
		"api/v1/products": "apiv1products",
		"":                "value",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}

	long := ""
	for i := 0; i < 80; i++ {
		long += "a"
	}
	if got := sanitizeFilename(long); len(got) != 50 {
		t.Errorf("sanitizeFilename truncation: len = %d, want 50", len(got))
	}
}

func TestExtensionFor(t *testing.T) {
	cases := map[string]string{"JSON": ".json", "XML": ".xml", "text": ".txt", "binary": ".txt"}
	for label, want := range cases {
		if got := ExtensionFor(label); got != want {
			t.Errorf("ExtensionFor(%q) = %q, want %q", label, got, want)
		}
	}
}
