package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_secretKey(t *testing.T) {
	t.Run("dev falls back to the built-in key", func(t *testing.T) {
		t.Setenv("ENV", "DEV")
		conf := loadConfig()
		assert.NotEmpty(t, conf.SecretKey)
		assert.NoError(t, conf.check())
	})

	t.Run("prod has no default key", func(t *testing.T) {
		t.Setenv("ENV", "PROD")
		conf := loadConfig()
		assert.Empty(t, conf.SecretKey)
		err := conf.check()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PROD_SECRETKEY")
	})

	t.Run("prod reads the key from the environment", func(t *testing.T) {
		t.Setenv("ENV", "PROD")
		t.Setenv("PROD_SECRETKEY", "from-env")
		conf := loadConfig()
		assert.Equal(t, "from-env", conf.SecretKey)
		assert.NoError(t, conf.check())
	})
}
