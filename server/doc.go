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

// Package server exposes the system over HTTP: document upload and
// management, RAG chat with SSE streaming, text and document analysis,
// and the compliance endpoints.
//
// The model service being down degrades the API rather than breaking
// it: /health reports degraded, uploads and chat fail with 503, while
// document listing and the compliance endpoints keep working.
package server
