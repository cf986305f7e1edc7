// Package workflow wires the pipeline stages together: scan, pairing,
// summarization, review, and apply, sharing one pending store so each
// stage can also run as a standalone command.
package workflow
