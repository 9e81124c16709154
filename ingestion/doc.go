// Copyright 2025 SentinelAI Systems
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

// Package ingestion turns uploaded document bytes into stored, searchable
// chunks.
//
// The pipeline extracts plain text, splits it into overlapping chunks,
// masks PII before anything touches the embedding model, generates
// embeddings in concurrent batches, and persists chunks, document
// metadata and an audit entry. Raw (unmasked) chunk text is never
// persisted or sent to the model.
package ingestion
