package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	// The helper must stay importable from packages the router depends on;
	// this import fails to build if it ever reaches back into internal/.
	_ "github.com/campoverde/backoffice/testing"
)

func TestInTestModeSetByHelperImport(t *testing.T) {
	// The blank import's init sets the variable before InTestMode first
	// reads the environment.
	require.True(t, InTestMode())
}
