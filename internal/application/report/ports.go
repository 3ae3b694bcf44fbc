package report

import (
	"context"

	"github.com/pentol/backend/internal/domain/report"
)

// DocumentWriter accumulates export rows into one document
type DocumentWriter interface {
	WriteRows(rows []report.ExportRow) error
	// Finish renders the document. The writer is unusable afterwards.
	Finish(ctx context.Context) ([]byte, error)
	Close() error
}

// DocumentBuilder opens writers per format
type DocumentBuilder interface {
	NewWriter(format report.Format, meta DocumentMeta) (DocumentWriter, error)
}

// ArtifactSink publishes a finished export and returns where it can be fetched
type ArtifactSink interface {
	Publish(ctx context.Context, fileName, contentType string, data []byte) (string, error)
}
