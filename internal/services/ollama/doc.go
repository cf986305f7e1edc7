// Package ollama integrates with a local Ollama endpoint for document
// summarization.
package ollama
