// Package bipartite implements the species-collectors incidence network.
//
// # Overview
//
// A [Network] is an undirected two-partition graph built from parallel
// record lists: record i associates species[i] with every collector in
// collectors[i]. Nodes carry the number of records they appear in; edges
// carry the number of records contributing that species-collector pair.
// Repeated pairs accumulate multiplicity on one edge, never parallel edges.
//
// # Matrix view
//
// The network maintains a cached biadjacency matrix (rows = collectors,
// columns = species, cell = pair multiplicity) in compressed sparse row
// form, together with bidirectional id-index maps. The cache is built
// lazily on the first matrix-dependent query and invalidated by any
// mutation, so callers always observe the current node and edge set.
// [Network.Matrix] hands out deep copies; the cache itself is never exposed.
//
// # Queries
//
//   - [Network.SpeciesBag]: the species-count vector of one collector
//   - [Network.InterestVector]: the collector-count vector of one species
//   - partition listings with typed attribute accessors
//
// # Projections
//
// [Network.Project] collapses the network onto one partition under one of
// three weighting rules (simple shared-neighbor counting, additive
// count-averaging, cosine similarity), with an optional inclusive weight
// threshold. See project.go for the exact semantics of each rule.
//
// # Concurrency
//
// A Network is single-owner: no internal locking is performed. Hosts that
// share an instance across goroutines must serialize mutation and matrix
// rebuilds themselves (see internal/server for an example).
package bipartite
