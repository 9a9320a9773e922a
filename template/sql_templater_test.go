package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		params   map[string]any
		want     string
		wantErr  bool
	}{
		{
			name:     "table and file",
			template: "CREATE OR REPLACE TABLE {{.Table}} AS SELECT * FROM read_csv('{{.CsvFile}}', header=true);",
			params:   map[string]any{"Table": "fact_sales", "CsvFile": "/tmp/x.csv"},
			want:     "CREATE OR REPLACE TABLE fact_sales AS SELECT * FROM read_csv('/tmp/x.csv', header=true);",
		},
		{
			name:     "missing parameter",
			template: "SELECT * FROM {{.Table}}",
			params:   map[string]any{},
			wantErr:  true,
		},
		{
			name:     "bad syntax",
			template: "SELECT {{.Table",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.template, tt.params)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecuteSqlTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "count.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT count(*) AS n FROM {{.Table}};"), 0o644))

	got, err := ExecuteSqlTemplate(path, map[string]any{"Table": "dim_date"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT count(*) AS n FROM dim_date;", got)

	_, err = ExecuteSqlTemplate(filepath.Join(t.TempDir(), "missing.sql"), nil)
	assert.Error(t, err)
}
