package app

import (
	"os"
	"sync"
)

const testModeEnv = "ATITHI_TEST_MODE"

var inTestMode = sync.OnceValue(func() bool {
	return os.Getenv(testModeEnv) == "1"
})

// InTestMode reports whether the process should skip runtime side effects
// such as opening database and Redis connections.
func InTestMode() bool {
	return inTestMode()
}
