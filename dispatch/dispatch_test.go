package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wglickman33/mykosherdelivery-sub001/models"
)

func TestParseIdentifierVariants(t *testing.T) {
	cases := []struct {
		name string
		body string
		want Update
	}{
		{
			name: "order_id field",
			body: `{"order_id":"prov-1","status":"picked_up"}`,
			want: Update{ProviderID: "prov-1", Status: "picked_up"},
		},
		{
			name: "bare id field",
			body: `{"id":"prov-2","status":"delivered"}`,
			want: Update{ProviderID: "prov-2", Status: "delivered"},
		},
		{
			name: "nested data id",
			body: `{"data":{"id":"prov-3","status":"enroute"}}`,
			want: Update{ProviderID: "prov-3", Status: "enroute"},
		},
		{
			name: "reference only",
			body: `{"reference":"ORD-42","status":"completed"}`,
			want: Update{Reference: "ORD-42", Status: "completed"},
		},
		{
			name: "order_number as reference",
			body: `{"order_number":"ORD-43","status":"completed"}`,
			want: Update{Reference: "ORD-43", Status: "completed"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseMissingFields(t *testing.T) {
	_, err := Parse([]byte(`{"status":"delivered"}`))
	assert.ErrorIs(t, err, ErrMissingIdentifier)

	_, err = Parse([]byte(`{"order_id":"prov-1"}`))
	assert.ErrorIs(t, err, ErrMissingStatus)

	_, err = Parse([]byte(`not json`))
	assert.Error(t, err)
}

func TestMapStatusPickupSynonyms(t *testing.T) {
	for _, s := range []string{"picked_up", "pickedup", "pickup", "PICKED_UP"} {
		got, err := MapStatus(s)
		require.NoError(t, err, s)
		assert.Equal(t, models.OrderStatusPreparing, got, s)
	}
}

func TestMapStatusCanonicalPassthrough(t *testing.T) {
	got, err := MapStatus("Out_For_Delivery")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusOutForDelivery, got)
}

func TestMapStatusRejectsUnknown(t *testing.T) {
	_, err := MapStatus("teleported")
	var ue *UnknownStatusError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "teleported", ue.Status)
}
