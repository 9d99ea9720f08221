package testhelpers

import (
	"context"
	"strings"
	"sync"

	"costconsole/sqlexec"
)

type fakeRule struct {
	fragment string
	rows     []sqlexec.Row
	err      error
}

// ExecCall is one statement seen by a FakeExecutor.
type ExecCall struct {
	Database  string
	Statement string
}

// FakeExecutor stands in for the query proxy. Statements are answered by the
// first rule whose fragment they contain; unmatched statements succeed with
// no rows.
type FakeExecutor struct {
	mu    sync.Mutex
	rules []fakeRule
	calls []ExecCall
}

func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{}
}

// On answers statements containing fragment with rows.
func (f *FakeExecutor) On(fragment string, rows ...sqlexec.Row) *FakeExecutor {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rows == nil {
		rows = []sqlexec.Row{}
	}
	f.rules = append(f.rules, fakeRule{fragment: fragment, rows: rows})
	return f
}

// Fail answers statements containing fragment with err.
func (f *FakeExecutor) Fail(fragment string, err error) *FakeExecutor {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, fakeRule{fragment: fragment, err: err})
	return f
}

func (f *FakeExecutor) Execute(ctx context.Context, database, statement string) (sqlexec.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ExecCall{Database: database, Statement: statement})
	rules := f.rules
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return sqlexec.Result{}, err
	}
	for _, r := range rules {
		if !strings.Contains(statement, r.fragment) {
			continue
		}
		if r.err != nil {
			return sqlexec.Result{Message: r.err.Error()}, r.err
		}
		return sqlexec.Result{Success: true, Rows: r.rows}, nil
	}
	return sqlexec.Result{Success: true, Rows: []sqlexec.Row{}}, nil
}

// Calls returns every statement executed so far.
func (f *FakeExecutor) Calls() []ExecCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ExecCall(nil), f.calls...)
}

// CallCount counts executed statements containing fragment.
func (f *FakeExecutor) CallCount(fragment string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.Contains(c.Statement, fragment) {
			n++
		}
	}
	return n
}

// ImportCall is one master-data import seen by a FakeImporter.
type ImportCall struct {
	GUID string
	Data []map[string]any
}

// FakeImporter records master-data imports and answers with Err when set.
type FakeImporter struct {
	mu    sync.Mutex
	Err   error
	calls []ImportCall
}

func (f *FakeImporter) ImportMasterData(ctx context.Context, guid string, data []map[string]any) (sqlexec.ImportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ImportCall{GUID: guid, Data: data})
	if f.Err != nil {
		return sqlexec.ImportResult{}, f.Err
	}
	return sqlexec.ImportResult{Data: len(data)}, nil
}

func (f *FakeImporter) Calls() []ImportCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ImportCall(nil), f.calls...)
}
