package services

import (
	"context"

	"costconsole/sqlexec"
)

// CostTreeFetcher loads tree records from the cost database. Each result row
// carries one delimited record in column "name".
type CostTreeFetcher struct {
	Exec     sqlexec.Executor
	Database string
}

func (f CostTreeFetcher) FetchRoots(ctx context.Context) ([]string, error) {
	return f.fetch(ctx, RootFoldersStatement())
}

// FetchChildren returns no records for node kinds without a children query.
func (f CostTreeFetcher) FetchChildren(ctx context.Context, node TreeNode) ([]string, error) {
	stmt := ChildrenStatement(node)
	if stmt == "" {
		return nil, nil
	}
	return f.fetch(ctx, stmt)
}

func (f CostTreeFetcher) fetch(ctx context.Context, stmt string) ([]string, error) {
	res, err := f.Exec.Execute(ctx, f.Database, stmt)
	if err != nil {
		return nil, err
	}
	records := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		if name := row.String("name"); name != "" {
			records = append(records, name)
		}
	}
	return records, nil
}
