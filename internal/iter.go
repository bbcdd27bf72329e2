// Package internal holds iterator helpers shared by the assembler, the
// emulator and the debugger.
package internal

import (
	"iter"
)

// IterSeq2Concat concatenates key/value iterators. A key may be yielded
// more than once; earlier sequences come first.
func IterSeq2Concat[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for key, value := range seq {
				if !yield(key, value) {
					return
				}
			}
		}
	}
}

// IterSeq2Find returns the value of the first pair with the given key.
func IterSeq2Find[K comparable, V any](seq iter.Seq2[K, V], key K) (value V, ok bool) {
	for k, v := range seq {
		if k == key {
			return v, true
		}
	}
	return
}
