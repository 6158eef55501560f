// Package fingerprint computes a stable digest over a set of ids. The
// resolver uses it to decide whether an id set actually changed between
// two Resolve calls, so swapping in an equivalent row set does not
// trigger a refetch.
package fingerprint

import (
	"encoding/binary"
	"encoding/hex"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// Set returns a hex digest of the deduplicated, sorted id set. Order and
// duplicates in the input do not affect the result. The empty set has a
// distinct, stable digest.
func Set(ids []string) string {
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	sort.Strings(uniq)

	h, _ := blake2b.New256(nil)
	var lenBuf [8]byte
	for _, id := range uniq {
		// Length-prefix each id so {"ab","c"} and {"a","bc"} differ.
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(id)))
		h.Write(lenBuf[:])
		h.Write([]byte(id))
	}
	return hex.EncodeToString(h.Sum(nil))
}
