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

// Package analysis derives keywords, topics and summaries from text using
// LLM prompts with JSON-constrained output.
//
// Local models routinely emit malformed JSON even in JSON mode, so every
// response goes through fence stripping, key-quote repair and a bounded
// retry loop before parsing is given up on. Document analysis samples a
// few chunks instead of sending whole documents to the model.
package analysis
