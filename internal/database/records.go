package database

import (
	"github.com/memgraph-query/mcp/internal/envelope"
	"github.com/neo4j/neo4j-go-driver/v6/neo4j"
	"github.com/neo4j/neo4j-go-driver/v6/neo4j/dbtype"
)

// RecordsToRows converts driver records into rows, keeping record order and
// duplicates. The result is never nil.
func RecordsToRows(records []*neo4j.Record) []envelope.Row {
	rows := make([]envelope.Row, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		rows = append(rows, RecordToRow(record))
	}
	return rows
}

// RecordToRow maps each key of the record to its exported value, in key order.
func RecordToRow(record *neo4j.Record) envelope.Row {
	e := exporter{nodes: map[string]map[string]any{}}
	for _, value := range record.Values {
		e.collectNodes(value)
	}

	row := envelope.NewRow(len(record.Keys))
	for i, key := range record.Keys {
		var value any
		if i < len(record.Values) {
			value = record.Values[i]
		}
		row.Set(key, e.export(value))
	}
	return row
}

// exporter turns graph entities into plain data. Nodes become their property
// maps. A relationship becomes [start props, type, end props]; endpoint props
// come from nodes of the same record and are empty when the record does not
// carry them. Paths become a list alternating node properties and
// relationship types.
type exporter struct {
	// nodes holds the property maps of the record's nodes by element id.
	nodes map[string]map[string]any
}

func (e exporter) collectNodes(value any) {
	switch v := value.(type) {
	case dbtype.Node:
		e.nodes[v.ElementId] = v.Props
	case *dbtype.Node:
		if v != nil {
			e.nodes[v.ElementId] = v.Props
		}
	case dbtype.Path:
		for _, node := range v.Nodes {
			e.nodes[node.ElementId] = node.Props
		}
	case *dbtype.Path:
		if v != nil {
			e.collectNodes(*v)
		}
	case []any:
		for _, item := range v {
			e.collectNodes(item)
		}
	case map[string]any:
		for _, item := range v {
			e.collectNodes(item)
		}
	}
}

func (e exporter) export(value any) any {
	switch v := value.(type) {
	case dbtype.Node:
		return e.exportMap(v.Props)
	case *dbtype.Node:
		if v == nil {
			return nil
		}
		return e.exportMap(v.Props)
	case dbtype.Relationship:
		return e.exportRelationship(v)
	case *dbtype.Relationship:
		if v == nil {
			return nil
		}
		return e.exportRelationship(*v)
	case dbtype.Path:
		return e.exportPath(v)
	case *dbtype.Path:
		if v == nil {
			return nil
		}
		return e.exportPath(*v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = e.export(item)
		}
		return out
	case map[string]any:
		return e.exportMap(v)
	default:
		return value
	}
}

func (e exporter) exportMap(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = e.export(v)
	}
	return out
}

func (e exporter) exportRelationship(rel dbtype.Relationship) []any {
	return []any{
		e.exportMap(e.nodes[rel.StartElementId]),
		rel.Type,
		e.exportMap(e.nodes[rel.EndElementId]),
	}
}

func (e exporter) exportPath(path dbtype.Path) []any {
	out := make([]any, 0, len(path.Nodes)+len(path.Relationships))
	for i, node := range path.Nodes {
		out = append(out, e.exportMap(node.Props))
		if i < len(path.Relationships) {
			out = append(out, path.Relationships[i].Type)
		}
	}
	return out
}
