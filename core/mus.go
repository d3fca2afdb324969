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


package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the core types that reach persistent storage.
// Timestamps are stored as Unix microseconds.

// IDMUS serializes IDs as varint-encoded uint64 values.
var IDMUS = idMUS{}

type idMUS struct{}

func (s idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (s idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (s idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (s idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

// DocumentMetadataMUS serializes DocumentMetadata values.
var DocumentMetadataMUS = documentMetadataMUS{}

type documentMetadataMUS struct{}

func (s documentMetadataMUS) Marshal(m DocumentMetadata, bs []byte) (n int) {
	n = ord.String.Marshal(m.DocumentId, bs)
	n += ord.String.Marshal(m.Title, bs[n:])
	n += ord.String.Marshal(m.FileName, bs[n:])
	n += ord.String.Marshal(m.FilePath, bs[n:])
	return
}

func (s documentMetadataMUS) Unmarshal(bs []byte) (m DocumentMetadata, n int, err error) {
	var n1 int
	m.DocumentId, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	m.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.FileName, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.FilePath, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s documentMetadataMUS) Size(m DocumentMetadata) int {
	return ord.String.Size(m.DocumentId) +
		ord.String.Size(m.Title) +
		ord.String.Size(m.FileName) +
		ord.String.Size(m.FilePath)
}

func (s documentMetadataMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	for i := 0; i < 4; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

// DocumentPayloadMUS serializes DocumentPayload values.
var DocumentPayloadMUS = documentPayloadMUS{}

type documentPayloadMUS struct{}

func (s documentPayloadMUS) Marshal(p DocumentPayload, bs []byte) (n int) {
	n = ord.String.Marshal(p.Text, bs)
	n += DocumentMetadataMUS.Marshal(p.Metadata, bs[n:])
	return
}

func (s documentPayloadMUS) Unmarshal(bs []byte) (p DocumentPayload, n int, err error) {
	var n1 int
	p.Text, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	p.Metadata, n1, err = DocumentMetadataMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s documentPayloadMUS) Size(p DocumentPayload) int {
	return ord.String.Size(p.Text) + DocumentMetadataMUS.Size(p.Metadata)
}

func (s documentPayloadMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = DocumentMetadataMUS.Skip(bs[n:])
	n += n1
	return
}

// CheckpointMUS serializes Checkpoint values.
var CheckpointMUS = checkpointMUS{}

type checkpointMUS struct{}

func (s checkpointMUS) Marshal(c Checkpoint, bs []byte) (n int) {
	n = ord.String.Marshal(c.Task, bs)
	n += IDMUS.Marshal(c.LastID, bs[n:])
	n += varint.PositiveInt.Marshal(c.Processed, bs[n:])
	n += varint.Int64.Marshal(c.UpdatedAt.UnixMicro(), bs[n:])
	return
}

func (s checkpointMUS) Unmarshal(bs []byte) (c Checkpoint, n int, err error) {
	var n1 int
	c.Task, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	c.LastID, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Processed, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.UpdatedAt = time.UnixMicro(micros).UTC()
	return
}

func (s checkpointMUS) Size(c Checkpoint) int {
	return ord.String.Size(c.Task) +
		IDMUS.Size(c.LastID) +
		varint.PositiveInt.Size(c.Processed) +
		varint.Int64.Size(c.UpdatedAt.UnixMicro())
}

func (s checkpointMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.PositiveInt.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	return
}
