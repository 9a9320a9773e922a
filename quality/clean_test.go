package quality

import (
	"strings"
	"testing"

	"github.com/keroloshany47/retail-etl/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readTable(t *testing.T, data string) *table.Table {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	return tbl
}

func TestClean(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name     string
		table    string
		input    string
		want     Metrics
		wantRows [][]string
		wantErr  string
	}{
		{
			name:  "customers fill and count",
			table: "customers",
			input: "customer_id,first_name,last_name,phone,email,city\n" +
				"1,Ann,,,a@x.io,Cairo\n" +
				"1,Ann,,,a@x.io,Cairo\n" +
				"2,Bob,Lee,555,,Giza\n",
			want:     Metrics{OriginalRows: 3, FinalRows: 2, DuplicatesRemoved: 1, NullsHandled: 3, Score: -33.33},
			wantRows: [][]string{{"1", "Ann", "Unknown", "Unknown", "a@x.io", "Cairo"}, {"2", "Bob", "Lee", "555", "Unknown", "Giza"}},
		},
		{
			name:    "customers missing a fill column",
			table:   "customers",
			input:   "customer_id,phone,email\n1,,\n",
			wantErr: "last_name",
		},
		{
			name:     "stores fill present columns without counting",
			table:    "stores",
			input:    "store_id,store_name,phone,zip_code,city\n1,Main,,,Cairo\n,Mall,123,11511,\n",
			want:     Metrics{OriginalRows: 2, FinalRows: 2, Score: 100},
			wantRows: [][]string{{"1", "Main", "Unknown", "0", "Cairo"}, {"0", "Mall", "123", "11511", ""}},
		},
		{
			name:     "staffs fill manager",
			table:    "staffs",
			input:    "staff_id,first_name,email,manager_id\n1,Eve,e@x.io,\n",
			want:     Metrics{OriginalRows: 1, FinalRows: 1, Score: 100},
			wantRows: [][]string{{"1", "Eve", "e@x.io", "0"}},
		},
		{
			name:  "order items drop null keys and negatives",
			table: "order_items",
			input: "order_id,item_id,product_id,quantity,list_price,discount\n" +
				"1,1,10,2,100,\n" +
				",2,11,1,50,0.1\n" +
				"2,1,,1,50,0.1\n" +
				"3,1,12,-1,50,0.1\n" +
				"4,1,13,1,-5,0.1\n",
			want:     Metrics{OriginalRows: 5, FinalRows: 1, NullsHandled: 2, InvalidRecordsRemoved: 2, Score: 20},
			wantRows: [][]string{{"1", "1", "10", "2", "100", ""}},
		},
		{
			name:    "non numeric price",
			table:   "products",
			input:   "product_id,list_price\n1,cheap\n",
			wantErr: "non-numeric",
		},
		{
			name:  "orders dates are normalized and required",
			table: "orders",
			input: "order_id,order_status,order_date,required_date,shipped_date\n" +
				"1,4,2024-01-10,2024-01-12,2024-01-15\n" +
				"2,4,01/11/2024,2024-01-13 00:00:00,2024-01-14\n" +
				"3,4,garbage,2024-01-13,2024-01-14\n" +
				"4,1,2024-01-10,2024-01-12,\n",
			want: Metrics{OriginalRows: 4, FinalRows: 2, NullsHandled: 1, InvalidRecordsRemoved: 1, Score: 50},
			wantRows: [][]string{
				{"1", "4", "2024-01-10", "2024-01-12", "2024-01-15"},
				{"2", "4", "2024-01-11", "2024-01-13", "2024-01-14"},
			},
		},
		{
			name:     "clean table scores 100",
			table:    "products",
			input:    "product_id,list_price\n1,10\n2,0\n",
			want:     Metrics{OriginalRows: 2, FinalRows: 2, Score: 100},
			wantRows: [][]string{{"1", "10"}, {"2", "0"}},
		},
		{
			name:     "empty table",
			table:    "products",
			input:    "product_id,list_price\n",
			want:     Metrics{Score: 100},
			wantRows: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := readTable(t, tt.input)

			got, err := Clean(tbl, RuleFor(rules, tt.table))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, tbl.Rows, len(tt.wantRows))
			for i := range tt.wantRows {
				assert.Equal(t, tt.wantRows[i], tbl.Rows[i])
			}
		})
	}
}

func TestClean_RowAccounting(t *testing.T) {
	// No null-drop rule applies to stores: duplicates plus invalid rows
	// explain the whole difference.
	tbl := readTable(t, "store_id,quantity,list_price\n1,1,1\n1,1,1\n2,-1,1\n3,1,-1\n4,,\n")

	m, err := Clean(tbl, RuleFor(DefaultRules(), "stores"))
	require.NoError(t, err)

	assert.LessOrEqual(t, m.FinalRows, m.OriginalRows)
	assert.Equal(t, m.OriginalRows-m.FinalRows, m.DuplicatesRemoved+m.InvalidRecordsRemoved)
	assert.Equal(t, 2, m.FinalRows)
}

func TestScore(t *testing.T) {
	assert.Equal(t, 100.0, Score(0, 10))
	assert.Equal(t, 100.0, Score(0, 0))
	assert.Equal(t, 83.33, Score(1, 6))
	assert.Equal(t, 0.0, Score(1, 0))
	assert.Equal(t, -50.0, Score(3, 2))

	// Non-increasing in the number of issues.
	prev := Score(0, 7)
	for issues := 1; issues <= 10; issues++ {
		s := Score(issues, 7)
		assert.LessOrEqual(t, s, prev)
		prev = s
	}
}

func TestRuleFor(t *testing.T) {
	rules := DefaultRules()

	assert.Equal(t, FillCounted, RuleFor(rules, "customers").Policy)
	assert.Equal(t, FillPresent, RuleFor(rules, "stores").Policy)
	assert.Equal(t, DropNullKeys, RuleFor(rules, "order_items").Policy)

	fallback := RuleFor(rules, "exchange_rates")
	assert.Equal(t, DropAnyNull, fallback.Policy)
	assert.Equal(t, "exchange_rates", fallback.Table)
	assert.Equal(t, "drop-any-null", fallback.Policy.String())
}
