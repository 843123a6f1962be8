package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pharma-ops/internal/invoice"
)

// DocumentRenderer turns an invoice payload into a document artifact.
type DocumentRenderer interface {
	Render(ctx context.Context, doc *invoice.Document) (*Artifact, error)
}

type jsonRenderer struct {
	now func() time.Time
}

// NewJSONRenderer returns a renderer that emits the structured payload as JSON for an
// external layout engine.
func NewJSONRenderer() DocumentRenderer {
	return &jsonRenderer{now: time.Now}
}

func (r *jsonRenderer) Render(ctx context.Context, doc *invoice.Document) (*Artifact, error) {
	if doc == nil {
		return nil, fmt.Errorf("failed to render invoice: document is nil")
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", doc.InvoiceNumber, err)
	}
	return &Artifact{
		Name:        ArtifactName(doc.InvoiceNumber, "json", r.now()),
		ContentType: ContentTypeJSON,
		Body:        body,
	}, nil
}
