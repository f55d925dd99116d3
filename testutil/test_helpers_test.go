package testutil

import (
	"os"
	"testing"

	"github.com/jmanurodriguez/cloudinary-portal/logger"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestWithEnv(t *testing.T) {
	t.Run("inner", func(t *testing.T) {
		WithEnv(t, "PORTAL_TESTUTIL_KEY", "on", func(fatal *FatalRecorder) {
			assert.Equal(t, "on", os.Getenv("PORTAL_TESTUTIL_KEY"))

			logger.Fatal("stop", zap.String("reason", "test"))
			assert.True(t, fatal.Called)
			assert.Equal(t, "stop", fatal.Msg)
			assert.Len(t, fatal.Fields, 1)
		})
	})

	_, set := os.LookupEnv("PORTAL_TESTUTIL_KEY")
	assert.False(t, set)
}

func TestCaptureFatal_Restored(t *testing.T) {
	orig := logger.Fatal
	called := false
	logger.Fatal = func(string, ...zap.Field) { called = true }
	defer func() { logger.Fatal = orig }()

	var fatal *FatalRecorder
	t.Run("inner", func(t *testing.T) {
		fatal = CaptureFatal(t)
		logger.Fatal("inside")
	})

	logger.Fatal("after")
	assert.True(t, called)
	assert.Equal(t, "inside", fatal.Msg)
}
