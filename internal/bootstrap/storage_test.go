package bootstrap

import (
	"context"
	"testing"

	"github.com/Domenick1991/bookit/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStorage_Memory(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = config.StorageDriverMemory

	s, err := OpenStorage(context.Background(), &cfg)
	require.NoError(t, err)
	defer s.Close()

	list, err := s.Experiences.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, s.Bookings)
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "sqlite"

	_, err := OpenStorage(context.Background(), &cfg)
	assert.ErrorContains(t, err, "unknown storage driver")
}
