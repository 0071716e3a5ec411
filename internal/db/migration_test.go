package db

import (
	"sort"
	"strings"
	"testing"
)

func TestMigrations_OrderedAndUnique(t *testing.T) {
	seen := map[string]bool{}
	versions := make([]string, 0, len(migrations))
	for _, m := range migrations {
		if seen[m.version] {
			t.Fatalf("duplicate migration version %s", m.version)
		}
		seen[m.version] = true
		versions = append(versions, m.version)

		if strings.TrimSpace(m.sql) == "" {
			t.Errorf("migration %s has no statements", m.version)
		}
	}
	if !sort.StringsAreSorted(versions) {
		t.Errorf("migrations must be declared in version order: %v", versions)
	}
}

func TestMigrations_ReferencedTablesCreatedFirst(t *testing.T) {
	created := map[string]bool{}
	for _, m := range migrations {
		sql := strings.ToLower(m.sql)
		for _, part := range strings.Split(sql, "references ")[1:] {
			table := strings.TrimSpace(part[:strings.Index(part, "(")])
			if !created[table] {
				t.Errorf("migration %s references %s before it exists", m.version, table)
			}
		}
		if i := strings.Index(sql, "create table if not exists "); i >= 0 {
			rest := strings.TrimSpace(sql[i+len("create table if not exists "):])
			created[strings.Fields(rest)[0]] = true
		}
	}
}
