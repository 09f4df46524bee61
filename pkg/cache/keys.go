package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// SnapshotKeyOpts are the inputs that distinguish one discovery run's
// snapshot from another's.
type SnapshotKeyOpts struct {
	// Hosts is the sorted inventory host list.
	Hosts []string
}

// ArtifactKeyOpts distinguish rendered outputs of the same snapshot.
type ArtifactKeyOpts struct {
	Format      string
	IgnorePorts []string
}

// Keyer generates cache keys. Implementations must be deterministic:
// identical inputs always produce identical keys.
type Keyer interface {
	// SnapshotKey keys a collected snapshot by its inventory.
	SnapshotKey(opts SnapshotKeyOpts) string

	// ArtifactKey keys a rendered artifact by its snapshot hash and
	// render options.
	ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the option structs into prefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SnapshotKey generates a key for snapshot caching.
func (k *DefaultKeyer) SnapshotKey(opts SnapshotKeyOpts) string {
	return hashKey("snapshot", opts)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", snapshotHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
