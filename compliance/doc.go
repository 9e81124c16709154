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

// Package compliance implements the data-protection operations: corpus
// statistics, audit trail access, and per-user data export and erasure.
//
// Erasure removes a user's documents, chunks and audit entries, but
// first appends a retained meta entry recording that the erasure
// happened. That entry belongs to the system user, not the erased user,
// so the trail keeps proof of the erasure itself.
package compliance
