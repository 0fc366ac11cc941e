package carrier_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vietcart/fulfillment/pkg/carrier"
	"github.com/vietcart/fulfillment/pkg/carrier/mock"
)

func TestRegistry_Register(t *testing.T) {
	registry := carrier.NewRegistry()

	mockCarrier := mock.New("test-carrier")
	registry.Register(mockCarrier)

	got, err := registry.Get("test-carrier")
	require.NoError(t, err, "carrier should be registered")
	assert.Equal(t, "test-carrier", got.Name())
}

func TestRegistry_Register_Override(t *testing.T) {
	registry := carrier.NewRegistry()

	registry.Register(mock.New("test-carrier"))
	assert.Equal(t, 1, registry.Count())

	// Register again with same name should override
	registry.Register(mock.New("test-carrier"))
	assert.Equal(t, 1, registry.Count())
}

func TestRegistry_Get_NotFound(t *testing.T) {
	registry := carrier.NewRegistry()

	_, err := registry.Get("nonexistent")
	assert.Error(t, err, "should return error for unregistered carrier")
	assert.True(t, errors.Is(err, carrier.ErrCarrierNotFound))
}

func TestRegistry_All_Sorted(t *testing.T) {
	registry := carrier.NewRegistry()

	registry.Register(mock.New("viettelpost"))
	registry.Register(mock.New("jtexpress"))
	registry.Register(mock.New("spx"))

	all := registry.All()
	require.Len(t, all, 3)
	assert.Equal(t, "jtexpress", all[0].Name())
	assert.Equal(t, "spx", all[1].Name())
	assert.Equal(t, "viettelpost", all[2].Name())
}

func TestRegistry_Names(t *testing.T) {
	registry := carrier.NewRegistry()

	registry.Register(mock.New("viettelpost"))
	registry.Register(mock.New("spx"))
	registry.Register(mock.New("jtexpress"))

	names := registry.Names()
	assert.Equal(t, []string{"jtexpress", "spx", "viettelpost"}, names)
}

func TestRegistry_Count(t *testing.T) {
	registry := carrier.NewRegistry()
	assert.Equal(t, 0, registry.Count())

	registry.Register(mock.New("carrier-a"))
	assert.Equal(t, 1, registry.Count())

	registry.Register(mock.New("carrier-b"))
	assert.Equal(t, 2, registry.Count())
}
