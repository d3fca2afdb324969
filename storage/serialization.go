// Copyright 2025 The fusedex authors
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


package storage

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/weecici/fusedex/core"
	"github.com/weecici/fusedex/index"
)

// TermRecord is the persisted form of one vocabulary entry: the term string
// and its postings list. Records are stored one per term, keyed by TermID,
// so loading in key order reconstructs the vocabulary with identical ids.
type TermRecord struct {
	Term     string
	Postings []index.Posting
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalPayload serializes a DocumentPayload to bytes.
func MarshalPayload(payload *core.DocumentPayload) []byte {
	buf := make([]byte, core.DocumentPayloadMUS.Size(*payload))
	core.DocumentPayloadMUS.Marshal(*payload, buf)
	return buf
}

// UnmarshalPayload deserializes a DocumentPayload from bytes.
func UnmarshalPayload(data []byte) (*core.DocumentPayload, error) {
	payload, _, err := core.DocumentPayloadMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &payload, nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	buf := make([]byte, core.CheckpointMUS.Size(*checkpoint))
	core.CheckpointMUS.Marshal(*checkpoint, buf)
	return buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint, _, err := core.CheckpointMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}

// MarshalTermRecord serializes a TermRecord to bytes.
func MarshalTermRecord(record *TermRecord) []byte {
	size := ord.String.Size(record.Term) + varint.PositiveInt.Size(len(record.Postings))
	for _, p := range record.Postings {
		size += core.IDMUS.Size(p.DocID) + varint.PositiveInt.Size(p.TermFreq)
	}

	buf := make([]byte, size)
	n := ord.String.Marshal(record.Term, buf)
	n += varint.PositiveInt.Marshal(len(record.Postings), buf[n:])
	for _, p := range record.Postings {
		n += core.IDMUS.Marshal(p.DocID, buf[n:])
		n += varint.PositiveInt.Marshal(p.TermFreq, buf[n:])
	}
	return buf
}

// UnmarshalTermRecord deserializes a TermRecord from bytes.
func UnmarshalTermRecord(data []byte) (*TermRecord, error) {
	record := &TermRecord{}

	term, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	record.Term = term

	count, n1, err := varint.PositiveInt.Unmarshal(data[n:])
	n += n1
	if err != nil {
		return nil, err
	}

	record.Postings = make([]index.Posting, count)
	for i := 0; i < count; i++ {
		record.Postings[i].DocID, n1, err = core.IDMUS.Unmarshal(data[n:])
		n += n1
		if err != nil {
			return nil, err
		}
		record.Postings[i].TermFreq, n1, err = varint.PositiveInt.Unmarshal(data[n:])
		n += n1
		if err != nil {
			return nil, err
		}
	}
	return record, nil
}

// MarshalDocLens serializes the per-document token length table.
func MarshalDocLens(lens map[core.ID]int) []byte {
	size := varint.PositiveInt.Size(len(lens))
	for id, l := range lens {
		size += core.IDMUS.Size(id) + varint.PositiveInt.Size(l)
	}

	buf := make([]byte, size)
	n := varint.PositiveInt.Marshal(len(lens), buf)
	for id, l := range lens {
		n += core.IDMUS.Marshal(id, buf[n:])
		n += varint.PositiveInt.Marshal(l, buf[n:])
	}
	return buf
}

// UnmarshalDocLens deserializes the per-document token length table.
func UnmarshalDocLens(data []byte) (map[core.ID]int, error) {
	count, n, err := varint.PositiveInt.Unmarshal(data)
	if err != nil {
		return nil, err
	}

	lens := make(map[core.ID]int, count)
	var n1 int
	for i := 0; i < count; i++ {
		var id core.ID
		id, n1, err = core.IDMUS.Unmarshal(data[n:])
		n += n1
		if err != nil {
			return nil, err
		}
		var l int
		l, n1, err = varint.PositiveInt.Unmarshal(data[n:])
		n += n1
		if err != nil {
			return nil, err
		}
		lens[id] = l
	}
	return lens, nil
}

// MarshalVector serializes an embedding vector to bytes.
func MarshalVector(vec []float32) []byte {
	size := varint.PositiveInt.Size(len(vec))
	for _, v := range vec {
		size += varint.Float32.Size(v)
	}

	buf := make([]byte, size)
	n := varint.PositiveInt.Marshal(len(vec), buf)
	for _, v := range vec {
		n += varint.Float32.Marshal(v, buf[n:])
	}
	return buf
}

// UnmarshalVector deserializes an embedding vector from bytes.
func UnmarshalVector(data []byte) ([]float32, error) {
	count, n, err := varint.PositiveInt.Unmarshal(data)
	if err != nil {
		return nil, err
	}

	vec := make([]float32, count)
	var n1 int
	for i := 0; i < count; i++ {
		vec[i], n1, err = varint.Float32.Unmarshal(data[n:])
		n += n1
		if err != nil {
			return nil, err
		}
	}
	return vec, nil
}
