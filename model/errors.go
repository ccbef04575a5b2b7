package model

import "github.com/cockroachdb/errors"

// Error kinds raised by the graph, the selectors and the simulator.
// Call sites wrap these with context, so match with errors.Is.
var (
	// ErrMalformedInput indicates an edge list that references undeclared
	// nodes, contains self-loops or is otherwise unparseable
	ErrMalformedInput = errors.New("malformed input")

	// ErrUnknownNode indicates a query against a node id absent from the graph
	ErrUnknownNode = errors.New("unknown node")

	// ErrInsufficientNodes indicates a selector cannot satisfy the requested count
	ErrInsufficientNodes = errors.New("insufficient nodes")

	// ErrInvalidSeed indicates overlapping, unknown or oversized seed/wise sets
	ErrInvalidSeed = errors.New("invalid seed")

	// ErrInvalidParameter indicates a simulation or selector parameter out of range
	ErrInvalidParameter = errors.New("invalid parameter")
)
