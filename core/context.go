package core

// ContextSource tags the origin of a retrieved context block. The retriever
// emits blocks in a fixed source order; downstream consumers rely on it.
type ContextSource string

// Known context sources, in retrieval order.
const (
	SourceVectorKB ContextSource = "vector_kb"
	SourceGraphRAG ContextSource = "graph_rag"
	SourceSchema   ContextSource = "data_schema"
	SourceIntent   ContextSource = "intent"
)

// ContextBlock is one tagged block of generation grounding assembled by the
// retriever. Entities is populated only for graph-sourced blocks.
type ContextBlock struct {
	Source   ContextSource `json:"source"`
	Content  string        `json:"content"`
	Entities []string      `json:"entities,omitempty"`
}
