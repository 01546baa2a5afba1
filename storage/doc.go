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

// Package storage provides the storage abstraction layer for infobot.
//
// The repository interfaces decouple the retrieval engine from the BadgerDB
// implementation in storage/badger. Three repositories cover the data model:
//
//   - ChunkRepository: indexed chunks, their vectors and concept references
//   - ConceptRepository: extracted concepts and their vectors
//   - DocumentRepository: a record of each inserted document
//
// Values are MUS-encoded with the serializers in core. IDs inside keys are
// 8 big-endian bytes so that badger's key order matches numeric order.
//
// Use in tests with in-memory storage:
//
//	repos, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repos.Close()
//
// All repository methods accept context.Context and are safe for concurrent use.
package storage
