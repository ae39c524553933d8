// Package guard switches binaries into test mode when imported by tests, so a
// test can call main without reaching postgres, redis or a listener.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("GLASS_TEST_MODE") == "" {
			_ = os.Setenv("GLASS_TEST_MODE", "1")
		}
	})
}
