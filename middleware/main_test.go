package middleware

import (
	"testing"

	"github.com/kendall-kelly/repair-shop-api/testutil"
)

func TestMain(m *testing.M) {
	testutil.RunWithTestEnvironment(m)
}
