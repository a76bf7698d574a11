package server_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pongarena/server"
)

// TestSyncLoggerWithoutInit 未初始化时 Log 为 Nop，同步不出错
func TestSyncLoggerWithoutInit(t *testing.T) {
	assert.NotPanics(t, func() { server.SyncLogger() })
	assert.NotNil(t, server.Log)
}
