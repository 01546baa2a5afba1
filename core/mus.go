// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the stored records. Fields are written in declaration
// order; times are Unix microseconds with the zero time written as 0.
var (
	IDMUS         = idMUS{}
	ConceptRefMUS = conceptRefMUS{}
	ChunkMUS      = chunkMUS{}
	ConceptMUS    = conceptMUS{}
	DocumentMUS   = documentMUS{}

	timeMUS        = timeMicroMUS{}
	vectorMUS      = ord.NewSliceSer[float32](raw.Float32)
	conceptRefsMUS = ord.NewSliceSer[ConceptRef](ConceptRefMUS)
)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type timeMicroMUS struct{}

func (s timeMicroMUS) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(unixMicro(v), bs)
}

func (s timeMicroMUS) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || micros == 0 {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func (s timeMicroMUS) Size(v time.Time) (size int) {
	return varint.Int64.Size(unixMicro(v))
}

func (s timeMicroMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int64.Skip(bs)
}

func unixMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

type conceptRefMUS struct{}

func (s conceptRefMUS) Marshal(v ConceptRef, bs []byte) (n int) {
	n = IDMUS.Marshal(v.ConceptId, bs)
	return n + varint.Int64.Marshal(int64(v.Importance), bs[n:])
}

func (s conceptRefMUS) Unmarshal(bs []byte) (v ConceptRef, n int, err error) {
	v.ConceptId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	importance, n1, err := varint.Int64.Unmarshal(bs[n:])
	n += n1
	v.Importance = int(importance)
	return
}

func (s conceptRefMUS) Size(v ConceptRef) (size int) {
	return IDMUS.Size(v.ConceptId) + varint.Int64.Size(int64(v.Importance))
}

func (s conceptRefMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	n1, err := varint.Int64.Skip(bs[n:])
	return n + n1, err
}

type chunkMUS struct{}

func (s chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.DocumentId, bs[n:])
	n += varint.Int64.Marshal(int64(v.Index), bs[n:])
	n += ord.String.Marshal(v.Contents, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	n += conceptRefsMUS.Marshal(v.Concepts, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	return n + timeMUS.Marshal(v.UpdatedAt, bs[n:])
}

func (s chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	v.DocumentId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var index int64
	index, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Index = int(index)
	v.Contents, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Concepts, n1, err = conceptRefsMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s chunkMUS) Size(v Chunk) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.DocumentId)
	size += varint.Int64.Size(int64(v.Index))
	size += ord.String.Size(v.Contents)
	size += vectorMUS.Size(v.Vector)
	size += conceptRefsMUS.Size(v.Concepts)
	size += timeMUS.Size(v.InsertedAt)
	return size + timeMUS.Size(v.UpdatedAt)
}

func (s chunkMUS) Skip(bs []byte) (n int, err error) {
	return skipAll(bs,
		IDMUS.Skip,
		IDMUS.Skip,
		varint.Int64.Skip,
		ord.String.Skip,
		vectorMUS.Skip,
		conceptRefsMUS.Skip,
		timeMUS.Skip,
		timeMUS.Skip,
	)
}

type conceptMUS struct{}

func (s conceptMUS) Marshal(v Concept, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.Type, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	return n + timeMUS.Marshal(v.UpdatedAt, bs[n:])
}

func (s conceptMUS) Unmarshal(bs []byte) (v Concept, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Type, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s conceptMUS) Size(v Concept) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.Type)
	size += vectorMUS.Size(v.Vector)
	size += timeMUS.Size(v.InsertedAt)
	return size + timeMUS.Size(v.UpdatedAt)
}

func (s conceptMUS) Skip(bs []byte) (n int, err error) {
	return skipAll(bs,
		IDMUS.Skip,
		ord.String.Skip,
		ord.String.Skip,
		vectorMUS.Skip,
		timeMUS.Skip,
		timeMUS.Skip,
	)
}

type documentMUS struct{}

func (s documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Source, bs[n:])
	n += varint.Int64.Marshal(int64(v.ChunkCount), bs[n:])
	return n + timeMUS.Marshal(v.InsertedAt, bs[n:])
}

func (s documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	v.Source, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var count int64
	count, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChunkCount = int(count)
	v.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s documentMUS) Size(v Document) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Source)
	size += varint.Int64.Size(int64(v.ChunkCount))
	return size + timeMUS.Size(v.InsertedAt)
}

func (s documentMUS) Skip(bs []byte) (n int, err error) {
	return skipAll(bs,
		IDMUS.Skip,
		ord.String.Skip,
		varint.Int64.Skip,
		timeMUS.Skip,
	)
}

func skipAll(bs []byte, skips ...func([]byte) (int, error)) (n int, err error) {
	for _, skip := range skips {
		n1, err := skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
