package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

const stateVersion = 1

var fileMutex sync.Mutex

// LoadState reads the state file. A missing file yields an empty state.
func LoadState() (*State, error) {
	path, err := GetStatePath()
	if err != nil {
		return nil, fmt.Errorf("failed to get state path: %w", err)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &State{Version: stateVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if st.Version != stateVersion {
		return nil, fmt.Errorf("unsupported state version: %d (expected %d)", st.Version, stateVersion)
	}
	return &st, nil
}

// Save writes the state atomically
func (s *State) Save() error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := ensureConfigDir(); err != nil {
		return err
	}
	path, err := GetStatePath()
	if err != nil {
		return fmt.Errorf("failed to get state path: %w", err)
	}

	s.Version = stateVersion
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	data = append([]byte("# tapauth greeter state, rewritten after every login\n"), data...)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary state file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save state file: %w", err)
	}
	return nil
}

// RememberUser stores username as the last user
func RememberUser(username string) error {
	st, err := LoadState()
	if err != nil {
		st = &State{}
	}
	st.LastUser = username
	return st.Save()
}
