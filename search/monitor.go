package search

import "github.com/sentinelai/sentinel/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterEmbedding(dimensions int)
	AfterVectorSearch(matches []*core.ChunkMatch)
	VerbatimHit(chunk *core.Chunk)
	Finish(results []*Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                         {}
func (n *noopMonitor) AfterEmbedding(_ int)                   {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.ChunkMatch) {}
func (n *noopMonitor) VerbatimHit(_ *core.Chunk)              {}
func (n *noopMonitor) Finish(_ []*Result)                     {}
