// SPDX-License-Identifier: MIT
// Package operator: caching entry point and batch-width bookkeeping.
//
// Purpose:
//   - CacheOperator is the public, ownership-safe way to prepare a tree
//     for allocation-free application: deep-copy, then allocate scratch.
//   - cacheWidth / foldCacheWidth / compatiblyCached answer "does this
//     cache serve that batch width" uniformly across kinds.
//
// Width convention: batchAgnostic (−1) marks caches that serve any batch
// width (raw dense payloads, vacuously cached leaves). Everything else is
// bound to the width it was allocated for.

package operator

import "gonum.org/v1/gonum/mat"

// batchAgnostic is the width reported by caches that serve any batch.
const batchAgnostic = -1

// cacheWidth reports the batch width l's cache serves. Kinds without
// batch-bound scratch are agnostic once cached; an uncached node reports
// not-ok.
func cacheWidth(l Operator) (int, bool) {
	if bc, ok := l.(batchCached); ok {
		return bc.cachedBatch()
	}
	if l.IsCached() {
		return batchAgnostic, true
	}

	return 0, false
}

// foldCacheWidth folds the cache widths of ops: every member must be
// cached, and all batch-bound members must agree on one width. The fold is
// agnostic only when every member is.
func foldCacheWidth(ops []Operator) (int, bool) {
	width := batchAgnostic
	for _, op := range ops {
		b, ok := cacheWidth(op)
		if !ok {
			return 0, false
		}
		if b == batchAgnostic {
			continue
		}
		if width != batchAgnostic && width != b {
			return 0, false
		}
		width = b
	}

	return width, true
}

// compatiblyCached reports whether l's cache serves batch width b.
func compatiblyCached(l Operator, b int) bool {
	w, ok := cacheWidth(l)
	if !ok {
		return false
	}

	return w == batchAgnostic || w == b
}

// CacheOperator returns an operator equivalent to l whose whole tree is
// cached for src's batch width. When l already serves that width it is
// returned unchanged; otherwise the tree is deep-copied and the copy is
// cached, so scratch is never shared between the argument and the result.
// Callers that applied in place before must keep using the returned value.
func CacheOperator(l Operator, src mat.Matrix) (Operator, error) {
	const tag = "CacheOperator"
	if err := validateOperand(l); err != nil {
		return nil, operr(tag, err)
	}
	if err := validateCacheSrc(l, src); err != nil {
		return nil, operr(tag, err)
	}
	if _, b := src.Dims(); compatiblyCached(l, b) {
		return l, nil
	}
	clone := l.Clone()
	if err := clone.Cache(src); err != nil {
		return nil, err
	}

	return clone, nil
}
