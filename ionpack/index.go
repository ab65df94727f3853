package ionpack

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// IndexPath is the archive path of the function index.
const IndexPath = "META-INF/index.cbor"

// cborEncMode uses canonical mode so index bytes are deterministic for a
// given set of entries.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ionpack: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// IndexEntry summarizes one function in the pack, so tools can list pack
// contents without decoding any bytecode.
type IndexEntry struct {
	Class        string `cbor:"class"`
	Function     string `cbor:"function"` // empty for anonymous functions
	Arity        int    `cbor:"arity"`
	Registers    int    `cbor:"registers"` // total register budget
	Instructions int    `cbor:"instructions"`
}

// Index is the decoded META-INF/index.cbor payload. Entries appear in the
// order their classes were added.
type Index struct {
	Entries []IndexEntry `cbor:"entries"`
}

// MarshalIndex serializes an Index to canonical CBOR bytes.
func MarshalIndex(ix *Index) ([]byte, error) {
	return cborEncMode.Marshal(ix)
}

// UnmarshalIndex deserializes an Index from CBOR bytes.
func UnmarshalIndex(data []byte) (*Index, error) {
	var ix Index
	if err := cbor.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("ionpack: unmarshal index: %w", err)
	}
	return &ix, nil
}

// ByClass returns the index entries for one class, in order.
func (ix *Index) ByClass(class string) []IndexEntry {
	var out []IndexEntry
	for _, e := range ix.Entries {
		if e.Class == class {
			out = append(out, e)
		}
	}
	return out
}
