package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kagiso-dev/thriftbales-backend/pkg/migrate"
)

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_orders.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no orders migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"DEFAULT generate_order_number()",
		"CHECK (fulfillment_status IN ('new_order', 'packing', 'shipped', 'delivered'))",
		"CHECK (payment_tracking_status IN ('Awaiting payment', 'Partially Paid', 'Fully Paid', 'Refunded'))",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS orders",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestStatusHistoryMigrationAllowsNoteEntries(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_order_status_history.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no status history migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	if !strings.Contains(string(data), "'note'") {
		t.Errorf("history entry_type check should allow 'note' rows")
	}
}

func TestMigrationsDirectoryValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
