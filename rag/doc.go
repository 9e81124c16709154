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

// Package rag answers chat queries grounded in retrieved document chunks.
//
// The Responder retrieves relevant chunks, assembles them into a context
// prompt that names each source file, and generates an answer either in
// one piece or as a token stream. When nothing relevant is stored, the
// model answers without document context and the response says so.
package rag
