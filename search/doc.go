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

// Package search provides semantic retrieval over stored document chunks.
//
// The Searcher type embeds a query, runs vector similarity search over
// the chunk store, boosts verbatim keyword matches, and enriches results
// with document metadata. It also offers retrieval quality metrics and
// centroid-based document similarity.
package search
