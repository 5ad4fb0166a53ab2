package models

import "strings"

// Schema is a named bag of tables plus the connection URL used to reach
// the backing datastore. It is the unit the schema store loads and
// caches by name.
type Schema struct {
	Name          string   `yaml:"name" json:"name"`
	ConnectionURL string   `yaml:"connection_url" json:"connection_url"`
	Dialect       string   `yaml:"dialect" json:"dialect"`
	Tables        []*Table `yaml:"tables" json:"tables"`
}

// TableByName returns the table with the given name (case-insensitive)
// or nil if not present.
func (s *Schema) TableByName(name string) *Table {
	for _, t := range s.Tables {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// Table describes one relational table within a schema.
type Table struct {
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Columns     []*Column `yaml:"columns" json:"columns"`
}

// ColumnByName returns the column with the given name (case-insensitive)
// or nil if not present.
func (t *Table) ColumnByName(name string) *Column {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// Column describes one column within a table, including optional
// declared foreign-key target.
type Column struct {
	Name         string `yaml:"name" json:"name"`
	DataType     string `yaml:"data_type" json:"data_type"`
	Nullable     bool   `yaml:"nullable" json:"nullable"`
	PrimaryKey   bool   `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
	ForeignKey   bool   `yaml:"foreign_key,omitempty" json:"foreign_key,omitempty"`
	TargetTable  string `yaml:"target_table,omitempty" json:"target_table,omitempty"`
	TargetColumn string `yaml:"target_column,omitempty" json:"target_column,omitempty"`
	Description  string `yaml:"description,omitempty" json:"description,omitempty"`
}
