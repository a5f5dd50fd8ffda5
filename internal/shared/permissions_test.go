package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalogMembership(t *testing.T) {
	require.True(t, IsValidPermission(PermSystemAll))
	require.True(t, IsValidPermission(PermDelegate))
	require.True(t, IsValidPermission(PermSectionView))
	require.False(t, IsValidPermission("REPORT_EXPORT"))
	require.False(t, IsValidPermission(""))
	require.False(t, IsValidPermission("section_view"))
}

func TestNormalizePermissions(t *testing.T) {
	got := NormalizePermissions([]string{" section_view ", "SECTION_VIEW", "", "user_create"})
	require.Equal(t, []string{"SECTION_VIEW", "USER_CREATE"}, got)
}

func TestUnknownPermissions(t *testing.T) {
	unknown := UnknownPermissions([]string{PermSectionView, "BOGUS", PermUserCreate, "ALSO_BOGUS"})
	require.Equal(t, []string{"BOGUS", "ALSO_BOGUS"}, unknown)

	require.Nil(t, UnknownPermissions([]string{PermSystemAll}))
}
