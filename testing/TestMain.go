// Package testing flips the application into test mode before any package
// init code can observe the environment. Test files blank-import it:
//
//	import _ "github.com/campoverde/backoffice/testing"
//
// It must not import anything under internal/, or packages reachable from
// the router could no longer blank-import it from their own tests.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("BACKOFFICE_TEST_MODE", "1")
	})
}

func init() {
	ensureTestMode()
}

// TestMain keeps the test-mode guarantee for packages that forward their
// entry point here instead of relying on import side effects.
func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
