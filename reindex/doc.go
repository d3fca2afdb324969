// Package reindex rebuilds a collection's lexical index from its stored
// payloads, for when tokenizer configuration or the embedding model changes.
//
// Documents are streamed from the payload store in batches. After each batch
// the updated snapshot and a progress checkpoint are persisted, so an
// interrupted run resumes where it stopped. Embedding calls are retried with
// exponential backoff.
package reindex
