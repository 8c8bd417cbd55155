package main

import (
	"testing"

	"github.com/Domenick1991/bookit/config"
	"github.com/stretchr/testify/assert"
)

func TestSweepEnabled(t *testing.T) {
	cfg := config.Default()
	assert.True(t, sweepEnabled(&cfg))

	cfg.Storage.Driver = config.StorageDriverMemory
	assert.False(t, sweepEnabled(&cfg))
}
