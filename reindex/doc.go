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

// Package reindex regenerates embedding vectors for every stored chunk.
//
// Run it after switching embedding models: chunk text is already masked
// and stored, so reindexing never touches the original documents, only
// the vectors. Work proceeds document by document in batches, with
// retry on embedding failures and progress reporting for long runs.
package reindex
