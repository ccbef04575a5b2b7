package model

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ReadEdgeList parses whitespace separated node id pairs, one per line.
// Blank lines, '#' and '%' comments and lines without exactly two fields
// are skipped; a field that is not an integer is an error.
func ReadEdgeList(r io.Reader) ([]Edge, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	edges := make([]Edge, 0)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, "%") {
			continue
		}
		parts := strings.Fields(text)
		if len(parts) != 2 {
			continue
		}

		a, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedInput, "line %d: %q is not a node id", line, parts[0])
		}
		b, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedInput, "line %d: %q is not a node id", line, parts[1])
		}
		edges = append(edges, Edge{A: a, B: b})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read edge list")
	}

	return edges, nil
}

// LoadEdgeListFile reads an edge list file and builds a graph over nodes
// 0..nodeCount-1
func LoadEdgeListFile(filename string, nodeCount int) (*Graph, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "open edge list %s", filename)
	}
	defer file.Close()

	edges, err := ReadEdgeList(file)
	if err != nil {
		return nil, errors.Wrapf(err, "edge list %s", filename)
	}

	return NewGraphWithNodeCount(nodeCount, edges)
}
