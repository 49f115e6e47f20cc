// Package bucket partitions line content into buckets and materializes a
// source file's lines as one partition file per bucket.
//
// The only correctness obligation of the bucket function is that identical
// content lands in the same bucket for a given partition count. It is the
// plain sum of the line's byte values (delimiter excluded) modulo the
// partition count, independent of which file the line came from. It is not
// collision resistant; lines that are byte permutations of each other always
// share a bucket.
package bucket

import (
	"path/filepath"
	"strconv"
)

// Source tags used in partition file names.
const (
	TagFirst  = "first_"
	TagSecond = "second_"
)

// Index returns the bucket of line for numParts buckets. numParts must be
// positive.
func Index(line []byte, numParts int) int {
	var sum uint64
	for _, c := range line {
		sum += uint64(c)
	}
	return int(sum % uint64(numParts))
}

// FileTag returns the tag for the i-th input of a unique-lines run.
func FileTag(i int) string {
	return strconv.Itoa(i) + "_"
}

// PartitionPath names the partition file for (tag, bucket) inside dir.
func PartitionPath(dir, tag string, bucket int) string {
	return filepath.Join(dir, tag+strconv.Itoa(bucket))
}

// PartitionPaths returns the numParts partition paths for tag, ordered by
// bucket index.
func PartitionPaths(dir, tag string, numParts int) []string {
	paths := make([]string, numParts)
	for i := range paths {
		paths[i] = PartitionPath(dir, tag, i)
	}
	return paths
}
