package migration

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	frauddomain "github.com/smallbiznis/fraudreview/internal/fraudreview/domain"
	orderdomain "github.com/smallbiznis/fraudreview/internal/order/domain"
	storedomain "github.com/smallbiznis/fraudreview/internal/store/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func TestApplyBuildsSchemaOnSQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Apply(conn))
	require.NoError(t, Apply(conn))

	for _, table := range []string{
		"stores",
		"sales_orders",
		"sales_order_payments",
		"sales_invoices",
		"sales_creditmemos",
		"sales_order_status_history",
		"fraud_review_events",
	} {
		require.True(t, conn.Migrator().HasTable(table), table)
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := embeddedMigrations.ReadDir(migrationsDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestRunMigrationsRequiresHandle(t *testing.T) {
	require.Error(t, RunMigrations(nil))
}

// MySQL rejects indexes on TEXT columns without a key length, so every
// indexed string column must map to a bounded varchar.
func TestIndexedColumnsAreVarcharOnMySQL(t *testing.T) {
	dialect := mysql.New(mysql.Config{SkipInitializeWithVersion: true})
	cache := &sync.Map{}

	cases := []struct {
		model any
		field string
		want  string
	}{
		{&storedomain.Store{}, "Code", "varchar(191)"},
		{&orderdomain.Order{}, "IncrementID", "varchar(191)"},
		{&orderdomain.CreditMemo{}, "Reference", "varchar(191)"},
		{&frauddomain.EventRecord{}, "EventKey", "varchar(64)"},
		{&frauddomain.EventRecord{}, "OrderIncrementID", "varchar(191)"},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			s, err := schema.Parse(tc.model, cache, schema.NamingStrategy{})
			require.NoError(t, err)
			field := s.LookUpField(tc.field)
			require.NotNil(t, field)
			assert.Equal(t, tc.want, dialect.DataTypeOf(field))
		})
	}
}
