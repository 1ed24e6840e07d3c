// Copyright 2016 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package query implements the query engine: candidate selection via the
// trigram index (or a bounded linear scan for short queries), abbreviation
// and substring scoring, and the deterministic secondary ranking that
// breaks score ties.
package query

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/vicaya/vicaya"
	"github.com/vicaya/vicaya/abbrev"
)

// minTrigramQueryLen is the boundary below which the engine falls back to
// a bounded linear scan instead of a trigram lookup. A policy, not a law
// (spec DESIGN NOTES §9) - kept as a named constant so it can be tuned
// without touching the algorithm around it.
const minTrigramQueryLen = 3

// maxEmptyScan bounds the linear-scan path: if this many candidates are
// scanned without a single match, the engine gives up rather than walk
// the whole table - the anti-pathological guard for queries like "*".
const maxEmptyScan = 1000

// Request is a single search query.
type Request struct {
	Term  string
	Limit int
	Scope string // optional path prefix; only descendants are returned
}

// Engine answers search queries over a snapshot.
type Engine struct {
	snap    *vicaya.Snapshot
	matcher *abbrev.Matcher
}

// New returns a query engine bound to snap. snap is read-only from the
// engine's perspective; the caller is responsible for the read lock that
// keeps it stable for the duration of Search (see package index).
func New(snap *vicaya.Snapshot) *Engine {
	return &Engine{snap: snap, matcher: abbrev.New()}
}

type rankedResult struct {
	result       vicaya.SearchResult
	contextScore int
	pathDepth    int
}

// Search executes req against the bound snapshot and returns at most
// req.Limit results, ordered by the secondary ranking key.
func (e *Engine) Search(req Request) []vicaya.SearchResult {
	term := strings.ToLower(req.Term)

	var ranked []rankedResult
	if len([]rune(term)) < minTrigramQueryLen {
		ranked = e.linearScan(term, req.Limit)
	} else {
		// Extract from the raw term so the query goes through the same
		// lowerASCII folding the index used for names.
		trigrams := vicaya.ExtractTrigrams(req.Term)
		candidates := e.snap.Trigrams.Query(trigrams)
		ranked = make([]rankedResult, 0, len(candidates))
		for _, id := range candidates {
			if r, ok := e.scoreCandidate(id, term); ok {
				ranked = append(ranked, r)
			}
		}
	}

	if req.Scope != "" {
		scope := normalizeScope(req.Scope)
		filtered := ranked[:0]
		for _, r := range ranked {
			if isDescendant(r.result.Path, scope) {
				filtered = append(filtered, r)
			}
		}
		ranked = filtered
	}

	sortRanked(ranked)

	if req.Limit > 0 && len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}

	out := make([]vicaya.SearchResult, len(ranked))
	for i, r := range ranked {
		out[i] = r.result
	}
	return out
}

// linearScan implements the §4.5 bounded linear scan used for queries
// shorter than minTrigramQueryLen.
func (e *Engine) linearScan(term string, limit int) []rankedResult {
	var ranked []rankedResult
	scanned := 0

	e.snap.Files.Iter(func(id vicaya.FileId, _ vicaya.FileMeta) bool {
		if limit > 0 && len(ranked) >= limit {
			return false
		}
		if len(ranked) == 0 && scanned >= maxEmptyScan {
			return false
		}
		scanned++

		if r, ok := e.scoreCandidate(id, term); ok {
			ranked = append(ranked, r)
		}
		return true
	})

	return ranked
}

// scoreCandidate resolves id's path/name from the arena and computes the
// best of the abbreviation and substring scores. A candidate that cannot
// be resolved (corrupted handle) or that scores positively on neither
// route is silently skipped, per spec §7.
func (e *Engine) scoreCandidate(id vicaya.FileId, query string) (rankedResult, bool) {
	meta, ok := e.snap.Files.Get(id)
	if !ok || meta.PathLen == 0 {
		// A zero path length marks a tombstoned row (see index.Store); it
		// is live in the FileTable but must never be returned.
		return rankedResult{}, false
	}

	p, ok := e.snap.Arena.GetString(meta.PathOffset, meta.PathLen)
	if !ok {
		return rankedResult{}, false
	}
	name, ok := e.snap.Arena.GetString(meta.NameOffset, meta.NameLen)
	if !ok {
		return rankedResult{}, false
	}

	nameLower := strings.ToLower(name)
	pathLower := strings.ToLower(p)

	var best float32
	haveScore := false

	if m := e.matcher.MatchPath(query, p); m != nil {
		best = m.Score
		haveScore = true
	}

	if strings.Contains(nameLower, query) || strings.Contains(pathLower, query) {
		s := substringScore(nameLower, query)
		if !haveScore || s > best {
			best = s
		}
		haveScore = true
	}

	if !haveScore {
		return rankedResult{}, false
	}

	return rankedResult{
		result: vicaya.SearchResult{
			Path:  p,
			Name:  name,
			Score: best,
			Size:  meta.Size,
			Mtime: meta.Mtime,
		},
		contextScore: contextScore(pathLower),
		pathDepth:    pathDepth(p),
	}, true
}

// substringScore implements the §4.5 substring scoring tiers, evaluated
// against the lowercased basename only (the original's calculate_score
// ignores the full path once the contains-check has passed).
func substringScore(nameLower, query string) float32 {
	if nameLower == query {
		return 1.00
	}
	if strings.HasPrefix(nameLower, query) {
		ratio := float32(len(query)) / float32(len(nameLower))
		return 0.90 + ratio*0.09
	}
	if strings.Contains(nameLower, " "+query) || strings.Contains(nameLower, "_"+query) {
		return 0.70
	}
	if strings.Contains(nameLower, query) {
		return 0.50
	}
	return 0.30
}

// contextPenalty is one noise-directory substring and the score it
// subtracts, in the order spec §4.5 lists them.
type contextPenalty struct {
	substr  string
	penalty int
}

var contextPenalties = []contextPenalty{
	{"/go/pkg/mod/", 100},
	{"/node_modules/", 90},
	{"/.cargo/", 90},
	{"/.rustup/", 80},
	{"/.gradle/caches/", 80},
	{"/.m2/repository/", 80},
	{"/.nuget/packages/", 80},
	{"/site-packages/", 70},
	{"/.venv/", 70},
	{"/venv/", 70},
	{"/__pycache__/", 70},
	{"/library/caches/", 80},
	{"/.cache/", 80},
	{"/library/developer/xcode/deriveddata/", 80},
	{"/target/", 60},
	{"/dist/", 60},
	{"/build/", 60},
	{"/out/", 60},
	{"/.git/", 40},
	{"/.idea/", 20},
	{"/.vscode/", 20},
}

// contextScore computes the ranking-only penalty of spec §4.5. Multiple
// matching penalties stack, as the spec requires.
func contextScore(pathLower string) int {
	score := 0
	for _, p := range contextPenalties {
		if strings.Contains(pathLower, p.substr) {
			score -= p.penalty
		}
	}
	return score
}

func pathDepth(p string) int {
	clean := path.Clean(p)
	if clean == "." || clean == "/" {
		return 0
	}
	clean = strings.Trim(clean, "/")
	return len(strings.Split(clean, "/"))
}

func normalizeScope(scope string) string {
	return strings.TrimSuffix(scope, "/")
}

// isDescendant reports whether p is scope itself or nested under it.
func isDescendant(p, scope string) bool {
	if p == scope {
		return true
	}
	return strings.HasPrefix(p, scope+"/")
}

func sortRanked(ranked []rankedResult) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.result.Score != b.result.Score {
			return a.result.Score > b.result.Score
		}
		if a.contextScore != b.contextScore {
			return a.contextScore > b.contextScore
		}
		if a.result.Mtime != b.result.Mtime {
			return a.result.Mtime > b.result.Mtime
		}
		if a.pathDepth != b.pathDepth {
			return a.pathDepth < b.pathDepth
		}
		return a.result.Path < b.result.Path
	})
}

// String implements fmt.Stringer for Request, useful in debug logging.
func (r Request) String() string {
	return fmt.Sprintf("Request{Term:%q,Limit:%d,Scope:%q}", r.Term, r.Limit, r.Scope)
}
