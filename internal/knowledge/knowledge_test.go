package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sharedLinkFindingTypes = []string{
	"a2b40dc9-b96a-4ace-b8f8-739c2be37dbd",
	"8150f237-576d-4b48-8839-0c257f612171",
	"85241e6b-205f-4de6-a1d1-325656130995",
	"7b6ecb52-852f-4184-bf19-175fe59202b7",
	"a81a79c8-a0bf-4c60-aa46-7547b4d34266",
	"f838ec6b-7d7a-4c1c-9c61-958ac24c27fa",
}

func TestLookup_AliasesShareGuide(t *testing.T) {
	first, ok := Lookup(sharedLinkFindingTypes[0])
	require.True(t, ok)
	assert.Equal(t, "remove_shared_links", first.Key)
	assert.Equal(t, "Remove Shared Links", first.Title)
	assert.Contains(t, first.Body, "DELETE /drives/{drive-id}/items/{item-id}/permissions/{perm-id}")

	for _, id := range sharedLinkFindingTypes[1:] {
		g, ok := Lookup(id)
		require.True(t, ok, id)
		assert.Equal(t, first, g, id)
	}
	assert.Equal(t, len(sharedLinkFindingTypes), Default().Len())
}

func TestLookup_Absent(t *testing.T) {
	for _, id := range []string{
		"",
		"unknown",
		// Microsoft folder public RW has no guide.
		"c9662c5c-c3d6-453b-9367-281e024f7e7a",
	} {
		g, ok := Lookup(id)
		assert.False(t, ok, id)
		assert.Equal(t, Guide{}, g)
	}
}

func TestLookup_ExactMatch(t *testing.T) {
	_, ok := Lookup("a2b40dc9-b96a-4ace-b8f8-739c2be37dbd")
	assert.True(t, ok)

	for _, id := range []string{
		"A2B40DC9-B96A-4ACE-B8F8-739C2BE37DBD",
		" a2b40dc9-b96a-4ace-b8f8-739c2be37dbd",
	} {
		_, ok := Lookup(id)
		assert.False(t, ok, id)
	}
}

func TestParse_UnknownGuide(t *testing.T) {
	_, err := Parse([]byte(`
guides: {}
finding_types:
  abc: missing
`))
	assert.Error(t, err)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("guides: ["))
	assert.Error(t, err)
}
