package badger

import (
	"encoding/binary"

	"github.com/poiesic/infobot/core"
)

// Key prefixes for different data types
const (
	chunkPrefix           = "chunk:"
	chunkConceptPrefix    = "chunkc:"
	conceptRecordPrefix   = "conrec:"
	conceptTypeNamePrefix = "contyna:"
	documentPrefix        = "doc:"
)

// makeIDKey appends an ID in BigEndian order to prefix so keys sort numerically.
func makeIDKey(prefix string, id core.ID) []byte {
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return makeIDKey(chunkPrefix, id)
}

// makeChunkConceptKey generates a composite key for the concept index.
// Format: prefix:conceptID:chunkID
func makeChunkConceptKey(conceptID, chunkID core.ID) []byte {
	buf := make([]byte, len(chunkConceptPrefix)+16)
	offset := copy(buf, chunkConceptPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(conceptID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkID))
	return buf
}

// makePartialChunkConceptKey generates a partial key for concept queries.
// Format: prefix:conceptID
func makePartialChunkConceptKey(conceptID core.ID) []byte {
	return makeIDKey(chunkConceptPrefix, conceptID)
}

// makeConceptKey generates a key for a concept by ID.
func makeConceptKey(id core.ID) []byte {
	return makeIDKey(conceptRecordPrefix, id)
}

// makeConceptTupleKey generates a composite key for concept lookup by (type, name).
// Format: prefix:type,name
func makeConceptTupleKey(name, conceptType string) []byte {
	buf := make([]byte, 0, len(conceptTypeNamePrefix)+len(conceptType)+1+len(name))
	buf = append(buf, conceptTypeNamePrefix...)
	buf = append(buf, conceptType...)
	buf = append(buf, ',')
	return append(buf, name...)
}

// makeDocumentKey generates a key for a document record by ID.
func makeDocumentKey(id core.ID) []byte {
	return makeIDKey(documentPrefix, id)
}
