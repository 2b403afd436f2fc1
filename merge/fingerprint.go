package merge

import (
	"encoding/binary"
	"hash"

	"github.com/minio/highwayhash"

	"arxmerge/arxml"
)

var fingerprintKey = []byte("arxmerge-leaf-content-fingerprnt")

// fingerprint hashes content of the subtree: tags, attributes, text and
// reference paths. Formatting and in-memory bindings are ignored.
func fingerprint(loc arxml.Locator) uint64 {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		// key length is constant
		panic(err)
	}
	writeNode(h, loc.Tree, loc.Node)
	return h.Sum64()
}

func writeNode(h hash.Hash64, t *arxml.Tree, id arxml.NodeID) {
	n := t.Node(id)
	writeString(h, n.Space)
	writeString(h, n.Tag)
	writeLen(h, len(n.Attrs))
	for _, a := range n.Attrs {
		writeString(h, a.Space)
		writeString(h, a.Key)
		writeString(h, a.Value)
	}
	if n.Ref != nil {
		writeString(h, n.Ref.Path)
	} else {
		writeString(h, n.Text)
	}
	writeLen(h, len(n.Children))
	for _, c := range n.Children {
		writeNode(h, t, c)
	}
}

func writeString(h hash.Hash64, s string) {
	writeLen(h, len(s))
	_, _ = h.Write([]byte(s))
}

func writeLen(h hash.Hash64, n int) {
	var buf [binary.MaxVarintLen64]byte
	_, _ = h.Write(buf[:binary.PutUvarint(buf[:], uint64(n))])
}
