// Package knowledge contains concrete implementations of the retrieval
// collaborators defined in core: a keyword-scored in-memory knowledge base
// with a TTL query cache, an in-memory domain knowledge graph with one-hop
// expansion, and a static dataset schema provider.
//
// All implementations are process-local and safe for concurrent use. They
// are intended for tests, demos and single-process deployments; swap in a
// vector database or graph database behind the same core interfaces for
// production retrieval.
package knowledge
