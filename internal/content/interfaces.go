package content

import "context"

type Loader interface {
	LoadCatalog(ctx context.Context, root string) (*Store, error)
}
