package config

import (
	"os"
	"runtime"
	"testing"
)

// isolate points the config directory at a fresh temp dir
func isolate(t *testing.T) {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("state tests rely on XDG_CONFIG_HOME")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoadStateMissingFile(t *testing.T) {
	isolate(t)

	st, err := LoadState()
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if st.LastUser != "" {
		t.Errorf("LoadState().LastUser = %q, want empty", st.LastUser)
	}
}

func TestStateSaveAndLoad(t *testing.T) {
	isolate(t)

	if err := RememberUser("alice"); err != nil {
		t.Fatalf("RememberUser() error = %v", err)
	}

	st, err := LoadState()
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if st.LastUser != "alice" {
		t.Errorf("LastUser = %q, want alice", st.LastUser)
	}

	path, _ := GetStatePath()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("state file missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("state file mode = %v, want 0600", perm)
	}

	if err := RememberUser("bob"); err != nil {
		t.Fatalf("RememberUser() error = %v", err)
	}
	st, _ = LoadState()
	if st.LastUser != "bob" {
		t.Errorf("LastUser = %q, want bob", st.LastUser)
	}
}

func TestLoadStateRejectsUnknownVersion(t *testing.T) {
	isolate(t)
	if err := ensureConfigDir(); err != nil {
		t.Fatal(err)
	}
	path, _ := GetStatePath()
	if err := os.WriteFile(path, []byte("version: 9\nlast_user: x\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadState(); err == nil {
		t.Error("LoadState() should reject version 9")
	}
}
