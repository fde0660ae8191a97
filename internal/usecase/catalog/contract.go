package catalog

import (
	"context"

	domcat "github.com/pathlab-cloud/refscan/internal/domain/catalog"
)

// Source supplies the full catalog entry list for a tenant. A refresh always
// replaces the whole snapshot regardless of how the source assembles the list.
type Source interface {
	ListEntries(ctx context.Context, tenantID string) ([]domcat.Entry, error)
}
