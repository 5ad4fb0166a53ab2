// Package sqlgen renders a QueryIntent into dialect-specific SQL text.
// Generate is a pure function of (intent, schemas, graph, dialect): it
// never touches a database connection itself.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/3FramesLab/recon-kg-engine/pkg/excluded"
	"github.com/3FramesLab/recon-kg-engine/pkg/joinplanner"
	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

// Dialect names accepted by Generate.
const (
	DialectPostgres  = "postgresql"
	DialectMySQL     = "mysql"
	DialectSQLServer = "sqlserver"
	DialectOracle    = "oracle"
)

// defaultLimit caps result sets when an intent doesn't specify one.
const defaultLimit = 1000

// Generate renders intent's SQL for dialect, returning warnings for any
// projection it had to drop (e.g. a missing join path) rather than
// failing outright.
func Generate(intent *models.QueryIntent, schemas []*models.Schema, graph *models.KnowledgeGraph, dialect string) (string, []string) {
	g := &generator{
		dialect: dialect,
		tables:  indexTables(schemas),
		graph:   graph,
	}

	switch intent.QueryType {
	case models.QueryTypeComparison:
		return g.comparison(intent)
	case models.QueryTypeAggregation:
		return g.aggregation(intent)
	default: // filter_query and data_query share a shape: SELECT ... WHERE ...
		return g.selectQuery(intent)
	}
}

type generator struct {
	dialect string
	tables  map[string]*models.Table
	graph   *models.KnowledgeGraph
}

func indexTables(schemas []*models.Schema) map[string]*models.Table {
	out := make(map[string]*models.Table)
	for _, s := range schemas {
		for _, t := range s.Tables {
			out[strings.ToLower(t.Name)] = t
		}
	}
	return out
}

// quote wraps an identifier per dialect convention.
func (g *generator) quote(name string) string {
	switch g.dialect {
	case DialectMySQL:
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	case DialectSQLServer:
		return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
	default: // postgresql, oracle
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
}

func (g *generator) qualify(table string) string {
	return g.quote(table)
}

// columnList returns table's column names with excluded fields dropped,
// falling back to "*" when the table is unknown to this generator.
func (g *generator) columnList(alias, tableName string) string {
	table, ok := g.tables[strings.ToLower(tableName)]
	if !ok {
		return g.quote(alias) + ".*"
	}

	var cols []string
	for _, c := range table.Columns {
		if excluded.IsExcluded(c.Name) {
			continue
		}
		cols = append(cols, fmt.Sprintf("%s.%s", g.quote(alias), g.quote(c.Name)))
	}
	if len(cols) == 0 {
		return g.quote(alias) + ".*"
	}
	return strings.Join(cols, ", ")
}

func literal(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func (g *generator) whereClause(filters []models.Filter, defaultTable string) string {
	if len(filters) == 0 {
		return ""
	}
	var clauses []string
	for _, f := range filters {
		table := f.TableHint
		if table == "" {
			table = defaultTable
		}
		comparator := f.Comparator
		if comparator == "" {
			comparator = "="
		}
		clauses = append(clauses, fmt.Sprintf("%s.%s %s %s", g.quote(table), g.quote(f.Column), comparator, literal(f.Value)))
	}
	return " WHERE " + strings.Join(clauses, " AND ")
}

// selectQuery renders a filter_query or data_query: SELECT ... FROM
// source [WHERE ...] with the additional-column LEFT JOINs and the
// dialect's row-limit syntax applied.
func (g *generator) selectQuery(intent *models.QueryIntent) (string, []string) {
	var warnings []string
	if intent.SourceTable == "" {
		return "", []string{"cannot generate SQL: no source table resolved"}
	}

	columns := g.columnList(intent.SourceTable, intent.SourceTable)
	joins, extraCols, joinWarnings := g.additionalColumnJoins(intent)
	warnings = append(warnings, joinWarnings...)
	if extraCols != "" {
		columns += ", " + extraCols
	}

	where := g.whereClause(intent.Filters, intent.SourceTable)

	limit := intent.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	query := g.assembleSelect(columns, intent.SourceTable, joins, where, limit)
	return query, warnings
}

// comparison renders a comparison_query: NOT_IN uses a LEFT JOIN with an
// IS NULL filter on the target's join column, IN an INNER JOIN.
func (g *generator) comparison(intent *models.QueryIntent) (string, []string) {
	if intent.SourceTable == "" || intent.TargetTable == "" || len(intent.JoinColumns) == 0 {
		return "", []string{"cannot generate comparison SQL: missing source/target table or join columns"}
	}

	jc := intent.JoinColumns[0]
	columns := g.columnList(intent.SourceTable, intent.SourceTable)
	on := fmt.Sprintf("%s.%s = %s.%s", g.quote(intent.SourceTable), g.quote(jc.SourceColumn), g.quote(intent.TargetTable), g.quote(jc.TargetColumn))

	var joinSQL string
	var conditions []string
	if intent.Operation == models.OpIn {
		joinSQL = fmt.Sprintf("INNER JOIN %s ON %s", g.qualify(intent.TargetTable), on)
	} else {
		joinSQL = fmt.Sprintf("LEFT JOIN %s ON %s", g.qualify(intent.TargetTable), on)
		conditions = append(conditions, fmt.Sprintf("%s.%s IS NULL", g.quote(intent.TargetTable), g.quote(jc.TargetColumn)))
	}

	for _, f := range intent.Filters {
		table := f.TableHint
		if table == "" {
			table = intent.SourceTable
		}
		comparator := f.Comparator
		if comparator == "" {
			comparator = "="
		}
		conditions = append(conditions, fmt.Sprintf("%s.%s %s %s", g.quote(table), g.quote(f.Column), comparator, literal(f.Value)))
	}

	var where string
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := intent.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	query := g.assembleSelect(columns, intent.SourceTable, []string{joinSQL}, where, limit)
	return query, nil
}

// aggregation renders an aggregation_query. COUNT needs no target
// column; SUM/AVG/AGGREGATE aggregate the first filter's column when
// present, otherwise fall back to COUNT(*) with a warning since no
// column was named to aggregate over.
func (g *generator) aggregation(intent *models.QueryIntent) (string, []string) {
	if intent.SourceTable == "" {
		return "", []string{"cannot generate aggregation SQL: no source table resolved"}
	}

	var warnings []string
	var expr string

	switch intent.Operation {
	case models.OpCount:
		expr = "COUNT(*)"
	case models.OpSum, models.OpAvg, models.OpAggregate:
		col := aggregationColumn(intent)
		if col == "" {
			warnings = append(warnings, "no aggregation column named, falling back to COUNT(*)")
			expr = "COUNT(*)"
		} else {
			fn := map[string]string{models.OpSum: "SUM", models.OpAvg: "AVG"}[intent.Operation]
			if fn == "" {
				fn = "COUNT"
			}
			expr = fmt.Sprintf("%s(%s.%s)", fn, g.quote(intent.SourceTable), g.quote(col))
		}
	default:
		expr = "COUNT(*)"
	}

	where := g.whereClause(intent.Filters, intent.SourceTable)
	query := g.assembleSelect(expr+" AS aggregate_value", intent.SourceTable, nil, where, 0)
	return query, warnings
}

func aggregationColumn(intent *models.QueryIntent) string {
	if len(intent.Filters) == 0 {
		return ""
	}
	return intent.Filters[0].Column
}

// additionalColumnJoins builds the LEFT JOIN chain for every
// AdditionalColumn's precomputed join path and the projected column
// expression list. A column whose path doesn't actually connect
// adjacent hops (shouldn't happen for a path from pkg/joinplanner, but
// defended here too) is dropped with a warning.
func (g *generator) additionalColumnJoins(intent *models.QueryIntent) (joins []string, columns string, warnings []string) {
	seenJoins := make(map[string]struct{})
	var cols []string

	for _, ac := range intent.AdditionalColumns {
		if len(ac.JoinPath) < 2 {
			warnings = append(warnings, fmt.Sprintf("additional column %s.%s has no usable join path, dropped", ac.Table, ac.ColumnName))
			continue
		}

		ok := true
		for i := 0; i+1 < len(ac.JoinPath); i++ {
			from, to := ac.JoinPath[i], ac.JoinPath[i+1]
			key := strings.ToLower(from) + "->" + strings.ToLower(to)
			if _, done := seenJoins[key]; done {
				continue
			}
			fromCol, toCol, found := joinplanner.JoinCondition(from, to, g.graph)
			if !found {
				warnings = append(warnings, fmt.Sprintf("no join condition between %s and %s, dropping additional column %s.%s", from, to, ac.Table, ac.ColumnName))
				ok = false
				break
			}
			joins = append(joins, fmt.Sprintf("LEFT JOIN %s ON %s.%s = %s.%s", g.qualify(to), g.quote(from), g.quote(fromCol), g.quote(to), g.quote(toCol)))
			seenJoins[key] = struct{}{}
		}
		if !ok {
			continue
		}

		alias := ac.Alias
		if alias == "" {
			alias = fmt.Sprintf("%s_%s", ac.Table, ac.ColumnName)
		}
		cols = append(cols, fmt.Sprintf("%s.%s AS %s", g.quote(ac.Table), g.quote(ac.ColumnName), g.quote(alias)))
	}

	return joins, strings.Join(cols, ", "), warnings
}

// assembleSelect applies the dialect's row-limit syntax: SQL Server
// gets "TOP (n)" right after SELECT, Oracle gets a "ROWNUM <= n"
// predicate folded into the WHERE clause, postgres/mysql get a
// trailing "LIMIT n". limit<=0 means unlimited (used for aggregate
// queries, which return one row).
func (g *generator) assembleSelect(columns, fromTable string, joins []string, where string, limit int) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if g.dialect == DialectSQLServer && limit > 0 {
		fmt.Fprintf(&b, "TOP (%d) ", limit)
	}
	b.WriteString(columns)
	fmt.Fprintf(&b, " FROM %s", g.qualify(fromTable))
	for _, j := range joins {
		b.WriteString(" ")
		b.WriteString(j)
	}

	if limit > 0 && g.dialect == DialectOracle {
		if where == "" {
			where = fmt.Sprintf(" WHERE ROWNUM <= %d", limit)
		} else {
			where = fmt.Sprintf("%s AND ROWNUM <= %d", where, limit)
		}
	}
	b.WriteString(where)

	if limit > 0 {
		switch g.dialect {
		case DialectOracle, DialectSQLServer:
			// already applied above (ROWNUM predicate / TOP)
		default:
			fmt.Fprintf(&b, " LIMIT %d", limit)
		}
	}
	return b.String()
}
