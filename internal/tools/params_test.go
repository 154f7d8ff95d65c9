package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools/testdata"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		sizeParam string
		args      map[string]any
		want      *apigateway.Pagination
		wantErr   bool
	}{
		{
			name: "absent uses gateway defaults",
			args: map[string]any{},
			want: &apigateway.Pagination{SizeParam: apigateway.SizeParamPerPage},
		},
		{
			name: "json numbers",
			args: map[string]any{"page": float64(3), "per_page": float64(50)},
			want: &apigateway.Pagination{Page: 3, PageSize: 50, SizeParam: apigateway.SizeParamPerPage},
		},
		{
			name:      "page_size parameter",
			sizeParam: apigateway.SizeParamPageSize,
			args:      map[string]any{"page_size": float64(5)},
			want:      &apigateway.Pagination{PageSize: 5, SizeParam: apigateway.SizeParamPageSize},
		},
		{
			name:    "fractional page",
			args:    map[string]any{"page": 1.5},
			wantErr: true,
		},
		{
			name:    "size above maximum",
			args:    map[string]any{"per_page": float64(101)},
			wantErr: true,
		},
		{
			name:    "negative page",
			args:    map[string]any{"page": float64(-1)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePagination(testdata.Request("t", tt.args), tt.sizeParam)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequiredUUID(t *testing.T) {
	req := testdata.Request("t", map[string]any{
		"good":  "3d8e3c46-4d5c-4b8e-9d2a-6a1f0e1c2b3d",
		"bad":   "not-a-uuid",
		"blank": "  ",
	})

	v, err := RequiredUUID(req, "good")
	require.NoError(t, err)
	assert.Equal(t, "3d8e3c46-4d5c-4b8e-9d2a-6a1f0e1c2b3d", v)

	_, err = RequiredUUID(req, "bad")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = RequiredUUID(req, "blank")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = RequiredUUID(req, "missing")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOptionalBool(t *testing.T) {
	req := testdata.Request("t", map[string]any{"yes": true, "str": "false", "bad": 3.0})

	v, err := OptionalBool(req, "yes")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.True(t, *v)

	v, err = OptionalBool(req, "str")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.False(t, *v)

	v, err = OptionalBool(req, "absent")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = OptionalBool(req, "bad")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOptionalStringSlice(t *testing.T) {
	req := testdata.Request("t", map[string]any{
		"list":   []any{"a", "b"},
		"single": "a",
		"mixed":  []any{"a", 1.0},
	})

	v, err := OptionalStringSlice(req, "list")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)

	v, err = OptionalStringSlice(req, "single")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, v)

	_, err = OptionalStringSlice(req, "mixed")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOneOf(t *testing.T) {
	allowed := []string{"MALICIOUS", "BENIGN"}
	assert.NoError(t, OneOf("final_disposition", "", allowed))
	assert.NoError(t, OneOf("final_disposition", "BENIGN", allowed))
	assert.ErrorIs(t, OneOf("final_disposition", "benign", allowed), ErrInvalidArgument)
	assert.NoError(t, OneOf("search", "onedrive", nil), "no enum means free text")
}

func TestQueryParam_Value(t *testing.T) {
	req := testdata.Request("t", map[string]any{
		"search":      "onedrive",
		"disposition": "SPAM",
	})

	v, err := QueryParam{Name: "search"}.value(req)
	require.NoError(t, err)
	assert.Equal(t, "onedrive", v)

	v, err = QueryParam{Name: "disposition", Enum: []string{"SPAM", "BULK"}}.value(req)
	require.NoError(t, err)
	assert.Equal(t, "SPAM", v)

	_, err = QueryParam{Name: "disposition", Enum: []string{"MALICIOUS"}}.value(req)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
