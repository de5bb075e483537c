package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	cfgpkg "github.com/VML-Technologies/VML.Perito-sub005/pkg/config"
)

func TestNewClient_RequiresAddresses(t *testing.T) {
	_, err := NewClient(context.Background(), &cfgpkg.RedisConfig{})
	require.Error(t, err)

	_, err = NewClient(context.Background(), nil)
	require.Error(t, err)
}
