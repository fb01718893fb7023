package models

// Role is the closed set of identities a user can hold. A role is assigned
// once at account creation and never changes.
type Role string

const (
	// RoleStudent can submit coursework.
	RoleStudent Role = "student"
	// RoleFaculty owns courses, creates assignments and reviews reports.
	RoleFaculty Role = "faculty"
	// RoleDepartmentHead manages courses and reviews reports across faculty.
	RoleDepartmentHead Role = "department_head"
)

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleDepartmentHead:
		return true
	}
	return false
}

// Action enumerates the operations guarded by authorization.
type Action string

const (
	// ActionSubmitWork uploads a submission for an assignment.
	ActionSubmitWork Action = "submit_work"
	// ActionViewReports reads similarity reports and submission listings.
	ActionViewReports Action = "view_reports"
	// ActionViewLifecycle reads submitted/pending/missed breakdowns.
	ActionViewLifecycle Action = "view_lifecycle"
	// ActionCreateAssignment creates an assignment for an owned course.
	ActionCreateAssignment Action = "create_assignment"
	// ActionImportRoster registers students for an owned course from CSV.
	ActionImportRoster Action = "import_roster"
	// ActionManageCourses creates and maintains course records.
	ActionManageCourses Action = "manage_courses"
)

// Can decides whether a role may perform an action. owns reports whether the
// actor owns the target resource, e.g. is the assigned faculty of the course
// the action touches. The decision is a pure function of (role, action, owns)
// and every variant is evaluated explicitly.
func (r Role) Can(action Action, owns bool) bool {
	switch r {
	case RoleStudent:
		switch action {
		case ActionSubmitWork:
			return true
		case ActionViewReports, ActionViewLifecycle, ActionCreateAssignment, ActionImportRoster, ActionManageCourses:
			return false
		}
	case RoleFaculty:
		switch action {
		case ActionSubmitWork:
			return false
		case ActionViewReports, ActionViewLifecycle:
			return true
		case ActionCreateAssignment, ActionImportRoster:
			return owns
		case ActionManageCourses:
			return false
		}
	case RoleDepartmentHead:
		switch action {
		case ActionSubmitWork, ActionCreateAssignment, ActionImportRoster:
			return false
		case ActionViewReports, ActionViewLifecycle, ActionManageCourses:
			return true
		}
	}
	return false
}
