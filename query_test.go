package resilite

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeQueryText(t *testing.T) {
	require.Equal(t, "select * from users", NormalizeQueryText("SELECT * FROM users"))
	require.Equal(t, "select * from users", NormalizeQueryText("  select * from users \n"))
	require.Equal(t, "", NormalizeQueryText("   "))
	// interior whitespace is significant
	require.NotEqual(t,
		NormalizeQueryText("select  *  from users"),
		NormalizeQueryText("select * from users"))
}

func TestQuery_CacheKeyIgnoresArgs(t *testing.T) {
	a := Q("SELECT * FROM users WHERE id = ?", 1)
	b := Q("select * from users where id = ?", 2)
	require.Equal(t, a.CacheKey(), b.CacheKey())
}
