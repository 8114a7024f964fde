package blocks

import (
	"bytes"
	"sort"
)

// ROBlock is a value that embeds a SignedBlock along with its block root ([32]byte).
// Since the root and slot for each ROBlock is known, slices can be efficiently sorted using ROBlockSlice.
type ROBlock struct {
	*SignedBlock
	root [32]byte
}

// Root returns the block hash_tree_root for the embedded SignedBlock.
func (b ROBlock) Root() [32]byte {
	return b.root
}

// NewROBlockWithRoot creates an ROBlock embedding the given block with its root. It accepts the root as parameter rather than
// computing it internally, because in some cases the root is already known and recomputing it is a waste.
func NewROBlockWithRoot(b *SignedBlock, root [32]byte) (ROBlock, error) {
	if b == nil || b.header == nil {
		return ROBlock{}, ErrNilBeaconBlock
	}
	return ROBlock{SignedBlock: b, root: root}, nil
}

// NewROBlock creates a ROBlock from a SignedBlock, computing the cached root.
func NewROBlock(b *SignedBlock) (ROBlock, error) {
	if b == nil || b.header == nil {
		return ROBlock{}, ErrNilBeaconBlock
	}
	root, err := b.Root()
	if err != nil {
		return ROBlock{}, err
	}
	return ROBlock{SignedBlock: b, root: root}, nil
}

// ROBlockSlice implements sort.Interface so that slices of ROBlocks can be easily sorted.
// A slice of ROBlock is sorted first by slot, with ties broken by cached block roots.
type ROBlockSlice []ROBlock

var _ sort.Interface = ROBlockSlice{}

// Less reports whether the element with index i must sort before the element with index j.
func (s ROBlockSlice) Less(i, j int) bool {
	si, sj := s[i].Slot(), s[j].Slot()

	// lower slot wins
	if si != sj {
		return si < sj
	}

	// break slot tie lexicographically comparing roots byte for byte
	ri, rj := s[i].Root(), s[j].Root()
	return bytes.Compare(ri[:], rj[:]) < 0
}

// Swap swaps the elements with indexes i and j.
func (s ROBlockSlice) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

// Len is the number of elements in the collection.
func (s ROBlockSlice) Len() int {
	return len(s)
}
