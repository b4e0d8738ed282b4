package portal

import (
	"testing"

	"github.com/medrex/onco-portal/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewFor(t *testing.T) {
	tests := []struct {
		role types.Role
		home string
		keys []string
	}{
		{role: types.RolePatient, home: "/patient", keys: []string{"overview", "calendar", "biomarkers", "timeline"}},
		{role: types.RoleNavigator, home: "/navigator", keys: []string{"patients", "calendar", "timeline"}},
		{role: types.RoleAdmin, home: "/admin", keys: []string{"reports", "patients", "calendar"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			view, err := ViewFor(tt.role)
			require.NoError(t, err)
			assert.Equal(t, tt.role, view.Role)
			assert.Equal(t, tt.home, view.Home)

			keys := make([]string, 0, len(view.Sections))
			for _, s := range view.Sections {
				keys = append(keys, s.Key)
			}
			assert.Equal(t, tt.keys, keys)
		})
	}

	_, err := ViewFor("superuser")
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
}

func TestViewFor_ReturnsCopy(t *testing.T) {
	view, err := ViewFor(types.RoleAdmin)
	require.NoError(t, err)
	view.Sections[0].Title = "Changed"

	again, err := ViewFor(types.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Reports", again.Sections[0].Title)
}
