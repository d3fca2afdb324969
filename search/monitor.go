package search

import "github.com/weecici/fusedex/core"

// SearchMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate results per query. Batch
// retrieval handles queries concurrently, so implementations must be safe
// for concurrent use.
type SearchMonitor interface {
	Start(query string)
	AfterSparseSearch(query string, results []core.RetrievedDocument)
	AfterDenseSearch(query string, matches []core.VectorMatch)
	AfterFusion(query string, results []core.RetrievedDocument)
	Finish(query string, results []core.RetrievedDocument)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                      {}
func (n *noopMonitor) AfterSparseSearch(_ string, _ []core.RetrievedDocument) {}
func (n *noopMonitor) AfterDenseSearch(_ string, _ []core.VectorMatch)     {}
func (n *noopMonitor) AfterFusion(_ string, _ []core.RetrievedDocument)    {}
func (n *noopMonitor) Finish(_ string, _ []core.RetrievedDocument)         {}
