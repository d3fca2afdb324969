package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/weecici/fusedex/core"
	"github.com/weecici/fusedex/index"
)

// Key prefixes for different data types
const (
	termRecordPrefix    = "idxterm"
	indexStatsPrefix    = "idxstat"
	payloadRecordPrefix = "payrec"
	vectorRecordPrefix  = "vecrec"
)

// makeTermKey generates a key for one vocabulary term of a collection.
// Format: prefix:collection:termID, with the id in BigEndian so iteration
// order matches TermID order.
func makeTermKey(collection string, id index.TermID) []byte {
	prefix := makeTermPrefix(collection)
	buf := make([]byte, len(prefix)+4)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint32(buf[offset:], uint32(id))
	return buf
}

// makeTermPrefix generates the key prefix for a collection's term records.
func makeTermPrefix(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", termRecordPrefix, collection))
}

// makeStatsKey generates the key for a collection's document length table.
func makeStatsKey(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s", indexStatsPrefix, collection))
}

// makePayloadKey generates a key for a payload record by document id.
// Format: prefix:collection:id, with the id in BigEndian so iteration
// walks documents in ascending id order.
func makePayloadKey(collection string, id core.ID) []byte {
	prefix := makePayloadPrefix(collection)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePayloadPrefix generates the key prefix for a collection's payloads.
func makePayloadPrefix(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", payloadRecordPrefix, collection))
}

// payloadIDFromKey extracts the document id from a payload record key.
func payloadIDFromKey(prefix, key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(prefix):]))
}

// makeVectorKey generates a key for an embedding record by document id.
func makeVectorKey(collection string, id core.ID) []byte {
	prefix := makeVectorPrefix(collection)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeVectorPrefix generates the key prefix for a collection's embeddings.
func makeVectorPrefix(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", vectorRecordPrefix, collection))
}

// vectorIDFromKey extracts the document id from an embedding record key.
func vectorIDFromKey(prefix, key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(prefix):]))
}

// makeCheckpointKey generates a key for task checkpoints.
func makeCheckpointKey(task string) []byte {
	return []byte(fmt.Sprintf("%s:chkpt", task))
}
