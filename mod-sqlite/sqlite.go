// Package sqlite exposes SQLite databases to Lazo programs.
package sqlite

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/jcgregorio/logger"
	_ "github.com/mattn/go-sqlite3"

	lazo "github.com/KajizukaTaichi/lazo/core"
)

const manual = `sqlite: SQLite databases, addressed by file path

  (sqlite-open path)                open (or create) a database
  (sqlite-close path)               close an open database
  (sqlite-list)                     list open databases
  (sqlite-drop path)                close a database and delete its file
  (sqlite-query path sql [params])  run a read query; a list of rows, each a list of column values
  (sqlite-columns path sql [params]) column names of a query
  (sqlite-exec path sql [params])   run a write statement; [rows-affected last-insert-id]
  (sqlite-exec-multi path [[sql params] ...])
                                    run statements in one transaction; one result per statement

params is a list bound to positional ? placeholders.`

// Module owns every open database handle.
type Module struct {
	log *logger.Logger

	dbs   map[string]*sql.DB
	dbsMu sync.Mutex
}

func New(log *logger.Logger) *Module {
	return &Module{
		log: log,
		dbs: make(map[string]*sql.DB),
	}
}

func (m *Module) Builtins() map[string]lazo.Builtin {
	return map[string]lazo.Builtin{
		"sqlite-help":       m.opManual,
		"sqlite-open":       m.opOpen,
		"sqlite-close":      m.opClose,
		"sqlite-list":       m.opList,
		"sqlite-drop":       m.opDrop,
		"sqlite-query":      m.opQuery,
		"sqlite-columns":    m.opColumns,
		"sqlite-exec":       m.opExec,
		"sqlite-exec-multi": m.opExecMulti,
	}
}

// Close closes every open database.
func (m *Module) Close() error {
	m.dbsMu.Lock()
	defer m.dbsMu.Unlock()

	var errs *multierror.Error
	for name, db := range m.dbs {
		m.log.Infof("closing database: %s", name)
		if err := db.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("close %s: %w", name, err))
		}
		delete(m.dbs, name)
	}
	return errs.ErrorOrNil()
}

func fail(format string, args ...any) error {
	return &lazo.RuntimeError{Msg: fmt.Sprintf(format, args...)}
}

// evalArgs evaluates between min and max arguments.
func evalArgs(args []lazo.Value, scope lazo.Scope, min, max int) ([]lazo.Value, error) {
	if len(args) < min || len(args) > max {
		return nil, &lazo.FunctionArityError{Got: len(args), Want: max}
	}
	return lazo.EvalArgs(args, scope)
}

func (m *Module) getDB(name string) (*sql.DB, error) {
	if name == "" {
		return nil, fail("missing db")
	}
	m.dbsMu.Lock()
	db, ok := m.dbs[name]
	m.dbsMu.Unlock()
	if !ok {
		return nil, fail("database %q not open", name)
	}
	return db, nil
}

// params converts the optional, already evaluated list at vals[i] into driver
// arguments. List elements are still raw, so each is evaluated once here and
// a literal list may mention variables. Whole numbers bind as integers.
func params(vals []lazo.Value, i int, scope lazo.Scope) ([]any, error) {
	if len(vals) <= i {
		return nil, nil
	}
	elems := vals[i].AsList()
	out := make([]any, len(elems))
	for j, e := range elems {
		ev, err := e.Eval(scope)
		if err != nil {
			return nil, err
		}
		v, err := lazo.ValueToGo(ev)
		if err != nil {
			return nil, fail("param %d: %s", j, err)
		}
		if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			v = int64(f)
		}
		out[j] = v
	}
	return out, nil
}

func (m *Module) opManual(args []lazo.Value, scope lazo.Scope) (lazo.Value, error) {
	return lazo.StringVal(manual), nil
}

func (m *Module) opOpen(args []lazo.Value, scope lazo.Scope) (lazo.Value, error) {
	vals, err := evalArgs(args, scope, 1, 1)
	if err != nil {
		return lazo.Value{}, err
	}
	name := vals[0].AsString()
	if name == "" {
		return lazo.Value{}, fail("missing db")
	}

	m.dbsMu.Lock()
	defer m.dbsMu.Unlock()

	if _, exists := m.dbs[name]; exists {
		return lazo.Value{}, fail("database %q already open", name)
	}

	db, err := sql.Open("sqlite3", name)
	if err != nil {
		return lazo.Value{}, fail("%s", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return lazo.Value{}, fail("%s", err)
	}

	m.dbs[name] = db
	m.log.Infof("opened database: %s", name)
	return lazo.StringVal(name), nil
}

func (m *Module) opClose(args []lazo.Value, scope lazo.Scope) (lazo.Value, error) {
	vals, err := evalArgs(args, scope, 1, 1)
	if err != nil {
		return lazo.Value{}, err
	}
	name := vals[0].AsString()

	m.dbsMu.Lock()
	db, exists := m.dbs[name]
	if !exists {
		m.dbsMu.Unlock()
		return lazo.Value{}, fail("database %q not open", name)
	}
	delete(m.dbs, name)
	m.dbsMu.Unlock()

	if err := db.Close(); err != nil {
		return lazo.Value{}, fail("%s", err)
	}

	m.log.Infof("closed database: %s", name)
	return lazo.NullVal(), nil
}

func (m *Module) opList(args []lazo.Value, scope lazo.Scope) (lazo.Value, error) {
	if _, err := evalArgs(args, scope, 0, 0); err != nil {
		return lazo.Value{}, err
	}
	m.dbsMu.Lock()
	defer m.dbsMu.Unlock()

	names := make([]string, 0, len(m.dbs))
	for name := range m.dbs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]lazo.Value, len(names))
	for i, n := range names {
		out[i] = lazo.StringVal(n)
	}
	return lazo.ListVal(out), nil
}

func (m *Module) opDrop(args []lazo.Value, scope lazo.Scope) (lazo.Value, error) {
	vals, err := evalArgs(args, scope, 1, 1)
	if err != nil {
		return lazo.Value{}, err
	}
	name := vals[0].AsString()
	if name == "" {
		return lazo.Value{}, fail("missing db")
	}

	m.dbsMu.Lock()
	db, open := m.dbs[name]
	if open {
		delete(m.dbs, name)
	}
	m.dbsMu.Unlock()

	if open {
		db.Close()
	}

	if err := os.Remove(name); err != nil {
		return lazo.Value{}, fail("%s", err)
	}

	m.log.Infof("dropped database: %s", name)
	return lazo.NullVal(), nil
}

// query runs a read query and hands back the column names and raw rows.
func (m *Module) query(args []lazo.Value, scope lazo.Scope) ([]string, [][]any, error) {
	vals, err := evalArgs(args, scope, 2, 3)
	if err != nil {
		return nil, nil, err
	}
	db, err := m.getDB(vals[0].AsString())
	if err != nil {
		return nil, nil, err
	}
	query := vals[1].AsString()
	if query == "" {
		return nil, nil, fail("missing sql")
	}
	ps, err := params(vals, 2, scope)
	if err != nil {
		return nil, nil, err
	}

	rows, err := db.Query(query, ps...)
	if err != nil {
		return nil, nil, fail("%s", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fail("%s", err)
	}

	var results [][]any
	for rows.Next() {
		row := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fail("%s", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fail("%s", err)
	}
	return cols, results, nil
}

func (m *Module) opQuery(args []lazo.Value, scope lazo.Scope) (lazo.Value, error) {
	_, rows, err := m.query(args, scope)
	if err != nil {
		return lazo.Value{}, err
	}
	out := make([]lazo.Value, len(rows))
	for i, row := range rows {
		out[i] = lazo.GoToValue(row)
	}
	return lazo.ListVal(out), nil
}

func (m *Module) opColumns(args []lazo.Value, scope lazo.Scope) (lazo.Value, error) {
	cols, _, err := m.query(args, scope)
	if err != nil {
		return lazo.Value{}, err
	}
	out := make([]lazo.Value, len(cols))
	for i, c := range cols {
		out[i] = lazo.StringVal(c)
	}
	return lazo.ListVal(out), nil
}

func execResult(res sql.Result) lazo.Value {
	ra, _ := res.RowsAffected()
	li, _ := res.LastInsertId()
	return lazo.ListVal([]lazo.Value{lazo.NumberVal(float64(ra)), lazo.NumberVal(float64(li))})
}

func (m *Module) opExec(args []lazo.Value, scope lazo.Scope) (lazo.Value, error) {
	vals, err := evalArgs(args, scope, 2, 3)
	if err != nil {
		return lazo.Value{}, err
	}
	db, err := m.getDB(vals[0].AsString())
	if err != nil {
		return lazo.Value{}, err
	}
	stmt := vals[1].AsString()
	if stmt == "" {
		return lazo.Value{}, fail("missing sql")
	}
	ps, err := params(vals, 2, scope)
	if err != nil {
		return lazo.Value{}, err
	}

	res, err := db.Exec(stmt, ps...)
	if err != nil {
		return lazo.Value{}, fail("%s", err)
	}
	return execResult(res), nil
}

// opExecMulti: (sqlite-exec-multi path [[sql params] ...]) runs every
// statement in one transaction and rolls back on the first failure.
func (m *Module) opExecMulti(args []lazo.Value, scope lazo.Scope) (lazo.Value, error) {
	vals, err := evalArgs(args, scope, 2, 2)
	if err != nil {
		return lazo.Value{}, err
	}
	db, err := m.getDB(vals[0].AsString())
	if err != nil {
		return lazo.Value{}, err
	}
	stmts := vals[1].AsList()
	if len(stmts) == 0 {
		return lazo.Value{}, fail("missing stmts")
	}

	tx, err := db.Begin()
	if err != nil {
		return lazo.Value{}, fail("%s", err)
	}

	results := make([]lazo.Value, 0, len(stmts))
	for i, s := range stmts {
		parts, err := lazo.EvalArgs(s.AsList(), scope)
		if err != nil {
			tx.Rollback()
			return lazo.Value{}, err
		}
		stmt := ""
		if len(parts) > 0 {
			stmt = parts[0].AsString()
		}
		if stmt == "" {
			tx.Rollback()
			return lazo.Value{}, fail("stmt %d: missing sql", i)
		}
		ps, err := params(parts, 1, scope)
		if err != nil {
			tx.Rollback()
			return lazo.Value{}, err
		}
		res, err := tx.Exec(stmt, ps...)
		if err != nil {
			tx.Rollback()
			return lazo.Value{}, fail("stmt %d: %s", i, err)
		}
		results = append(results, execResult(res))
	}

	if err := tx.Commit(); err != nil {
		return lazo.Value{}, fail("%s", err)
	}
	return lazo.ListVal(results), nil
}
