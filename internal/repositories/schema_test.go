package repositories

import (
	"bufio"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadSchemaColumns parses db_schema.sql into table name -> column name set,
// so tests can catch columns the queries reference but the schema never
// defines.
func loadSchemaColumns(t *testing.T) map[string]map[string]bool {
	t.Helper()

	f, err := os.Open("../../db_schema.sql")
	require.NoError(t, err)
	defer f.Close()

	tables := make(map[string]map[string]bool)
	var current map[string]bool

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "CREATE TABLE") {
			fields := strings.Fields(strings.TrimSuffix(line, "("))
			name := fields[len(fields)-1]
			current = make(map[string]bool)
			tables[name] = current
			continue
		}
		if current == nil {
			continue
		}
		if strings.HasPrefix(line, ");") {
			current = nil
			continue
		}
		first := strings.Fields(line)
		if len(first) == 0 {
			continue
		}
		switch first[0] {
		case "UNIQUE", "CHECK", "PRIMARY", "FOREIGN", "CONSTRAINT":
			continue
		}
		current[first[0]] = true
	}
	require.NoError(t, scanner.Err())
	return tables
}

func TestSchemaDefinesAllQueriedColumns(t *testing.T) {
	tables := loadSchemaColumns(t)

	columnLists := map[string]string{
		"users":               userColumns,
		"guest_pages":         guestPageColumns,
		"tip_transactions":    tipColumns,
		"stay_reservations":   stayColumns,
		"meal_reservations":   mealColumns,
		"checklist_templates": templateColumns,
		"daily_checklists":    dailyChecklistColumns,
		"shifts":              shiftColumns,
		"time_records":        timeRecordColumns,
		"inventory_items":     inventoryItemColumns,
	}
	for table, list := range columnLists {
		t.Run(table, func(t *testing.T) {
			columns, ok := tables[table]
			require.True(t, ok, "table %s missing from schema", table)
			for _, col := range strings.Split(list, ", ") {
				assert.True(t, columns[col], "schema table %s lacks column %s", table, col)
			}
		})
	}
}

func TestSchemaDefinesChecklistItemColumns(t *testing.T) {
	tables := loadSchemaColumns(t)

	items := tables["checklist_items"]
	require.NotNil(t, items)
	for _, col := range []string{"id", "template_id", "title", "sort_order", "created_at"} {
		assert.True(t, items[col], "schema table checklist_items lacks column %s", col)
	}

	entries := tables["daily_checklist_entries"]
	require.NotNil(t, entries)
	for _, col := range []string{"id", "daily_checklist_id", "checklist_item_id", "completed_at", "completed_by"} {
		assert.True(t, entries[col], "schema table daily_checklist_entries lacks column %s", col)
	}
}
