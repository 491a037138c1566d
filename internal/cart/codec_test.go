package cart

import (
	"testing"

	"github.com/abgdnv/gostorefront/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Encode_StoresReferences(t *testing.T) {
	// given
	items := []Item{
		{Product: catalog.Product{ID: "prod_1", Name: "Legendary Dragon Sword", Price: 1200}, Quantity: 2},
		{Product: catalog.Product{ID: "prod_5"}, Quantity: 1},
	}
	// when
	data, err := Encode(items)
	// then
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"items":[{"productId":"prod_1","quantity":2},{"productId":"prod_5","quantity":1}]}`, string(data))

	refs, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []Reference{{ProductID: "prod_1", Quantity: 2}, {ProductID: "prod_5", Quantity: 1}}, refs)
}

func Test_Decode_Errors(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{name: "Empty", data: "  "},
		{name: "Truncated", data: `{"version":1,"items":[`},
		{name: "Wrong version", data: `{"version":2,"items":[]}`},
		{name: "Missing product id", data: `{"version":1,"items":[{"quantity":1}]}`},
		{name: "Legacy without product", data: `[{"quantity":1}]`},
		{name: "Legacy garbage", data: `[1,2,3]`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.data))
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func Test_Decode_EmptyLegacyArray(t *testing.T) {
	refs, err := Decode([]byte("[]"))
	require.NoError(t, err)
	assert.Empty(t, refs)
}
