package snapshot

import (
	"context"
	"encoding/json"
	"regexp"
	"time"

	"github.com/vango-dev/loom/internal/errors"
)

// Snapshot is the committed markup of a mount's children.
type Snapshot struct {
	Key       string    `json:"key"`
	Pass      uint64    `json:"pass"`
	HTML      string    `json:"html"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists snapshots by key.
type Store interface {
	// Put writes s under s.Key, replacing any previous snapshot.
	Put(ctx context.Context, s *Snapshot) error

	// Get returns the snapshot stored under key, or an E151 error.
	Get(ctx context.Context, key string) (*Snapshot, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the stored keys in ascending order.
	List(ctx context.Context) ([]string, error)
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateKey rejects keys that are unsafe as file names or object keys.
func ValidateKey(key string) error {
	if !validKey.MatchString(key) {
		return errors.New("E150").WithDetailf("invalid snapshot key %q", key).
			WithSuggestion("Use letters, digits, dot, dash and underscore")
	}
	return nil
}

func encode(s *Snapshot) ([]byte, error) {
	if err := ValidateKey(s.Key); err != nil {
		return nil, err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.FromError(err, "E150").WithOp("encode")
	}
	return data, nil
}

func decode(key string, data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.New("E150").Wrap(err).WithDetailf("corrupt snapshot %q", key)
	}
	return &s, nil
}

func notFound(key string) error {
	return errors.New("E151").WithDetailf("no snapshot %q", key)
}

// IsNotFound reports whether err is a missing snapshot.
func IsNotFound(err error) bool {
	return errors.IsCode(err, "E151")
}
