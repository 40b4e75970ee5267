package envelope

import (
	"encoding/json"
	"strconv"

	"github.com/mickamy/apiwire/querytext"
)

// QueryKind names which variant of Query is populated.
type QueryKind string

const (
	KindSQL        QueryKind = "sql"
	KindPython     QueryKind = "python"
	KindExecutable QueryKind = "executable"
)

// SQLQuery is the `sql` query variant.
type SQLQuery struct {
	Database string `json:"database"`
	SQL      string `json:"sql"`
}

// PythonQuery is the `python` query variant. Params is a JSON object,
// not a flat string — see DESIGN.md's Open Question #6.
type PythonQuery struct {
	Script string         `json:"script"`
	Params map[string]any `json:"params"`
}

// ExecutableQuery is the `executable` query variant. The field is
// named Name (wire key "name"), not "script" — see DESIGN.md's Open
// Question #7.
type ExecutableQuery struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// Query is a tagged union over the three query variants the server
// understands. Exactly one of SQL/Python/Executable is populated,
// matching Kind.
type Query struct {
	Kind       QueryKind
	SQL        *SQLQuery
	Python     *PythonQuery
	Executable *ExecutableQuery
}

// NewSQLQuery builds a Query carrying a SQL variant.
func NewSQLQuery(database, sql string) Query {
	return Query{Kind: KindSQL, SQL: &SQLQuery{Database: database, SQL: sql}}
}

// NewPythonQuery builds a Query carrying a Python variant.
func NewPythonQuery(script string, params map[string]any) Query {
	return Query{Kind: KindPython, Python: &PythonQuery{Script: script, Params: params}}
}

// NewExecutableQuery builds a Query carrying an Executable variant.
func NewExecutableQuery(name string, params map[string]any) Query {
	return Query{Kind: KindExecutable, Executable: &ExecutableQuery{Name: name, Params: params}}
}

// Summary returns a best-effort, short human string describing the
// query, for display purposes (activity logs, the TUI preview pane).
// It is never part of the wire contract.
func (q Query) Summary() string {
	switch q.Kind {
	case KindSQL:
		if q.SQL != nil {
			return q.SQL.SQL
		}
	case KindPython:
		if q.Python != nil {
			if params := querytext.FormatParams(q.Python.Params); params != "" {
				return q.Python.Script + " (" + params + ")"
			}
			return q.Python.Script
		}
	case KindExecutable:
		if q.Executable != nil {
			if params := querytext.FormatParams(q.Executable.Params); params != "" {
				return q.Executable.Name + " (" + params + ")"
			}
			return q.Executable.Name
		}
	}
	return ""
}

// Request is the full JSON envelope sent client → server, per spec §6.
type Request struct {
	QueryID   uint64
	AuthToken string
	KeepAlive bool
	Debug     bool
	Query     Query
}

// wireRequest mirrors the exact wire field names/shape; only one of
// SQL/Python/Executable is ever non-nil, so encoding/json naturally
// emits "exactly one of sql|python|executable" via omitempty.
type wireRequest struct {
	ID         string           `json:"id"`
	AuthToken  string           `json:"authToken"`
	KeepAlive  bool             `json:"keepAlive"`
	Debug      bool             `json:"debug"`
	SQL        *SQLQuery        `json:"sql,omitempty"`
	Python     *PythonQuery     `json:"python,omitempty"`
	Executable *ExecutableQuery `json:"executable,omitempty"`
}

// MarshalJSON implements the `id` (string-of-integer), `authToken`,
// `keepAlive`, `debug`, plus exactly one of `sql|python|executable`
// shape required by spec §6.
func (r Request) MarshalJSON() ([]byte, error) {
	w := wireRequest{
		ID:        strconv.FormatUint(r.QueryID, 10),
		AuthToken: r.AuthToken,
		KeepAlive: r.KeepAlive,
		Debug:     r.Debug,
	}
	switch r.Query.Kind {
	case KindSQL:
		w.SQL = r.Query.SQL
	case KindPython:
		w.Python = r.Query.Python
	case KindExecutable:
		w.Executable = r.Query.Executable
	}
	return json.Marshal(w)
}
