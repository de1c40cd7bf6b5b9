package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPredicate(t *testing.T) {
	tbl := MustTable[item]("items")

	tests := []struct {
		name      string
		spec      SearchSpec
		wantWhere string
		wantArgs  []any
	}{
		{
			name: "nil spec matches all",
			spec: nil,
		},
		{
			name: "empty values are skipped",
			spec: SearchSpec{"name": "", "color": ""},
		},
		{
			name: "unknown and hidden fields are ignored",
			spec: SearchSpec{"colour": "red", "Secret": "x", "note": "y"},
		},
		{
			name:      "single field",
			spec:      SearchSpec{"name": "abc"},
			wantWhere: ` WHERE LOWER(CAST("name" AS TEXT)) LIKE LOWER(?) ESCAPE '\'`,
			wantArgs:  []any{"%abc%"},
		},
		{
			name:      "fields are ORed in field order",
			spec:      SearchSpec{"name": "abc", "color": "red", "unknown": "z"},
			wantWhere: ` WHERE LOWER(CAST("color" AS TEXT)) LIKE LOWER(?) ESCAPE '\' OR LOWER(CAST("name" AS TEXT)) LIKE LOWER(?) ESCAPE '\'`,
			wantArgs:  []any{"%red%", "%abc%"},
		},
		{
			name:      "wildcards are escaped",
			spec:      SearchSpec{"name": `50%_off\`},
			wantWhere: ` WHERE LOWER(CAST("name" AS TEXT)) LIKE LOWER(?) ESCAPE '\'`,
			wantArgs:  []any{`%50\%\_off\\%`},
		},
		{
			name:      "non-text columns compare as text",
			spec:      SearchSpec{"qty": "1", "createdAt": "2024"},
			wantWhere: ` WHERE LOWER(CAST("created_at" AS TEXT)) LIKE LOWER(?) ESCAPE '\' OR LOWER(CAST("qty" AS TEXT)) LIKE LOWER(?) ESCAPE '\'`,
			wantArgs:  []any{"%2024%", "%1%"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPredicate(tbl, tt.spec)
			where, args := p.Where()
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
			assert.Equal(t, tt.wantWhere == "", p.MatchAll())
		})
	}
}

func TestSearchSpecFromValues(t *testing.T) {
	values := url.Values{
		"page":     {"2"},
		"pageSize": {"20"},
		"name":     {"first", "second"},
		"color":    {""},
		"empty":    {},
	}
	assert.Equal(t, SearchSpec{"name": "first", "color": ""}, SearchSpecFromValues(values))
}
