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

// Package engine is the retrieval engine behind infobot.
//
// Insert embeds text, extracts its concepts and stores both in the chunk and
// concept repositories. Query retrieves chunks with one of four strategies and
// asks the generator to answer from them:
//
//   - naive: question embedding against chunk embeddings
//   - local: concepts named in the question, through the concept index
//   - global: question embedding against concept embeddings
//   - hybrid: local and global merged, with boosts for overlap and verbatim matches
//
// Every model call runs on a shared ants pool whose size is the max-async cap,
// so a small cap serializes heavy calls across concurrent queries.
package engine
