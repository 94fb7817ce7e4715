// Package internal holds helpers shared by the vole packages.
package internal

import (
	"iter"
)

// ConcatSeq2 yields every pair of each sequence in turn.
func ConcatSeq2[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for n := range seqs {
			for key, value := range seqs[n] {
				if !yield(key, value) {
					return
				}
			}
		}
	}
}
