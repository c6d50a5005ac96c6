package snapshot

import (
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// lock takes the advisory lock guarding path. Two processes sharing a
// snapshot file (one saving, one inspecting) serialize here rather
// than interleave reads with partial writes.
func lock(path string) (unlock func(), err error) {
	fl := flock.New(path + ".lock")
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("lock snapshot: %w", err)
	}
	return func() { _ = fl.Unlock() }, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// Save encodes the state and writes it to path under the advisory
// lock. The write goes through a temp file and rename so readers never
// observe a torn snapshot even without the lock.
func Save(st *State, path string) error {
	data, err := st.Encode()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	unlock, err := lock(path)
	if err != nil {
		return err
	}
	defer unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
