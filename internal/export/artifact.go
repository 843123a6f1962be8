package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ContentTypeCSV  = "text/csv"
	ContentTypeJSON = "application/json"
)

// Artifact is a rendered file ready to be stored or streamed.
type Artifact struct {
	Name        string
	ContentType string
	Body        []byte
}

// ArtifactStore persists artifacts and returns where they can be fetched from.
type ArtifactStore interface {
	Put(ctx context.Context, a *Artifact) (string, error)
}

// ArtifactName builds a unique file name such as orders-20250305-<uuid>.csv.
func ArtifactName(kind, ext string, now time.Time) string {
	kind = strings.Trim(strings.ToLower(kind), "-")
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("%s-%s-%s.%s", kind, now.Format("20060102"), uuid.NewString(), ext)
}
