// Package reembed regenerates the stored vectors of an existing index.
//
// It is used after switching embedding models: every chunk is re-embedded
// from its contents and every concept from its (Type,Name) tuple. Work runs
// in batches with retry and exponential backoff, and vectors are normalized
// so that dot-product search keeps meaning cosine similarity.
package reembed
