package portal

import (
	"github.com/medrex/onco-portal/pkg/types"
)

var roleViews = map[types.Role]types.RoleView{
	types.RolePatient: {
		Role: types.RolePatient,
		Home: "/patient",
		Sections: []types.Section{
			{Key: "overview", Title: "Overview", Path: "/patient"},
			{Key: "calendar", Title: "Calendar", Path: "/patient/calendar"},
			{Key: "biomarkers", Title: "Biomarkers", Path: "/patient/biomarkers"},
			{Key: "timeline", Title: "Timeline", Path: "/patient/timeline"},
		},
	},
	types.RoleNavigator: {
		Role: types.RoleNavigator,
		Home: "/navigator",
		Sections: []types.Section{
			{Key: "patients", Title: "Patients", Path: "/navigator/patients"},
			{Key: "calendar", Title: "Calendar", Path: "/navigator/calendar"},
			{Key: "timeline", Title: "Timeline", Path: "/navigator/timeline"},
		},
	},
	types.RoleAdmin: {
		Role: types.RoleAdmin,
		Home: "/admin",
		Sections: []types.Section{
			{Key: "reports", Title: "Reports", Path: "/admin/reports"},
			{Key: "patients", Title: "Patients", Path: "/admin/patients"},
			{Key: "calendar", Title: "Calendar", Path: "/admin/calendar"},
		},
	},
}

// ViewFor returns the navigation of role
func ViewFor(role types.Role) (types.RoleView, error) {
	view, ok := roleViews[role]
	if !ok {
		// ParseRole produces the validation error for unknown names
		_, err := types.ParseRole(string(role))
		return types.RoleView{}, err
	}
	view.Sections = append([]types.Section(nil), view.Sections...)
	return view, nil
}
