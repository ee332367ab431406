// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Command bytehash drives the search: it pulls shapes from a BFS
// enumerator, tags each one with random leaves, lowers it to bytecode,
// scores it against random mutation clusters, and reports the best
// candidates found. On linux/amd64 every candidate is also compiled and
// spot-checked against the interpreter before it's scored.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/avalanche-labs/bytehash"
	"github.com/avalanche-labs/bytehash/bytecode"
	"github.com/avalanche-labs/bytehash/expr"
	"github.com/avalanche-labs/bytehash/search"
)

func fatalf(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

type candidate struct {
	tree  *expr.Expr[expr.Tag]
	prog  *bytecode.Program
	score float64
}

func main() {
	iterations := flag.Int("iterations", 200, "number of shapes to pull from the enumerator")
	report := flag.Int("report", 10, "number of top candidates to print")
	registers := flag.Int("registers", 6, "bytecode register slots per candidate")
	clusters := flag.Int("clusters", 32, "random byte clusters per scoring run")
	clusterSize := flag.Int("cluster-size", 16, "mutations scored per cluster")
	bytesLen := flag.Int("bytes", 32, "length of the random byte string hashed per cluster")
	mutations := flag.Int("mutations", 4, "bits flipped per mutation")
	seed := flag.Int64("seed", 1, "PRNG seed")
	skipJIT := flag.Bool("skip-jit", false, "skip JIT compile-and-verify even when available")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.Lshortfile)
	runID := uuid.New()
	logger.Printf("run %s: iterations=%d registers=%d jit=%v", runID, *iterations, *registers, jitAvailable && !*skipJIT)

	rng := rand.New(rand.NewSource(*seed))
	enumerator := search.NewEnumerator()
	tagger := search.NewTagger(rng)

	var candidates []candidate
	for i := 0; i < *iterations; i++ {
		shape, ok := enumerator.Next()
		if !ok {
			logger.Printf("enumerator exhausted after %d shapes", i)
			break
		}
		if shape.IsLeaf() {
			// The enumerator's first pull is always the bare leaf shape;
			// it has no operator to search over, so it's skipped rather
			// than scored and ranked alongside real candidates.
			continue
		}
		tree := tagger.Annotate(shape)
		prog := bytecode.Lower(tree, *registers)

		if jitAvailable && !*skipJIT {
			if mismatch, err := verifyJIT(prog); err != nil {
				fatalf("jit compile for %q: %v", expr.String(tree), err)
			} else if mismatch != "" {
				fatalf("jit/interpreter mismatch for %q: %s", expr.String(tree), mismatch)
			}
		}

		score := bytehash.Score(prog, expr.Len(tree), 0, *clusters, *clusterSize, *bytesLen, *mutations, rng)
		candidates = append(candidates, candidate{tree: tree, prog: prog, score: score})
	}

	slices.SortFunc(candidates, func(a, b candidate) bool {
		return a.score > b.score
	})

	n := *report
	if n > len(candidates) {
		n = len(candidates)
	}
	for i := 0; i < n; i++ {
		c := candidates[i]
		fmt.Printf("%.6f\t%s\n", c.score, expr.String(c.tree))
	}
}
