package project

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// idHashLen is the number of hex characters kept from the content hash.
const idHashLen = 12

// DeterministicID derives a stable identifier for a derived entity:
// the kind joined with the first 12 hex characters of the SHA-256 of the
// value's canonical JSON. Identical content always yields the same id
// regardless of map iteration or key order.
func DeterministicID(kind string, v any) string {
	data, err := StableJSON(v)
	if err != nil {
		// Unmarshalable values cannot occur for the entity shapes we
		// hash; fall back to the fmt rendering so the id stays stable
		// for a given input rather than failing the transition.
		data = []byte(fmt.Sprintf("%+v", v))
	}
	sum := sha256.Sum256(data)
	return kind + "-" + hex.EncodeToString(sum[:])[:idHashLen]
}

// NewTaskID returns a fresh unique identifier for an agent or execution
// task. Unlike derived-entity ids, task ids are unique per creation.
func NewTaskID() string {
	return uuid.NewString()
}
