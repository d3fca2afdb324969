// Package ingestion provides pipeline orchestration for adding documents to
// a collection.
//
// The Pipeline type manages the ingestion workflow:
//   - validating the document batch and assigning content-based ids
//   - building or updating the collection's lexical index (upsert semantics)
//   - generating embeddings concurrently with a worker pool
//   - upserting embeddings into the vector backend
//   - persisting the new snapshot and publishing it to the registry
//
// Ingestion is synchronous and transactional at the batch level: any failure
// aborts the whole batch, and readers keep serving the previous snapshot
// until the new one is published.
package ingestion
