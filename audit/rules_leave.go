package audit

import "strings"

// grantedLeaveStatuses are the statuses under which a leave was actually taken.
var grantedLeaveStatuses = map[string]bool{
	leaveApproved: true,
	"ACTIVE":      true,
	"COMPLETED":   true,
}

func evalSuspensionLeave(in *Input) []Flag {
	s := in.Snapshot
	var out []Flag

	if s.IsSuspended {
		msg := "employee is on suspension"
		if !s.SuspensionDate.IsZero() {
			msg += " since " + s.SuspensionDate.String()
		}
		if present(s.SuspensionReason) {
			msg += " (" + strings.TrimSpace(s.SuspensionReason) + ")"
		}
		out = append(out, Flag{Category: CategorySuspension, Message: msg, Severity: SeverityCritical})
	}

	for _, l := range s.Leaves {
		status := l.NormalizedStatus()
		if !grantedLeaveStatuses[status] {
			continue
		}
		kind := l.NormalizedType()
		active := status != "COMPLETED" && l.Window().Contains(in.AsOf)

		switch {
		case active && isUnpaidStudyLeave(kind):
			out = append(out, flag(CategoryLeave,
				"on unpaid study leave since %s; salary should be suspended", l.StartDate).withSeverity(SeverityMedium))
		case active && strings.Contains(kind, "SABBATICAL"):
			out = append(out, flag(CategoryLeave, "on sabbatical since %s", l.StartDate))
		}

		if !s.IsConfirmed && !isProtectedLeave(kind) {
			out = append(out, flag(CategoryLeave,
				"%s leave from %s taken while unconfirmed", strings.ToLower(kind), l.StartDate).withSeverity(SeverityMedium))
		}
	}
	return out
}

func isUnpaidStudyLeave(kind string) bool {
	return strings.Contains(kind, "STUDY") &&
		(strings.Contains(kind, "UNPAID") || strings.Contains(kind, "WITHOUT_PAY"))
}

// isProtectedLeave covers the leave types an unconfirmed officer may take.
func isProtectedLeave(kind string) bool {
	return strings.Contains(kind, "SICK") || strings.Contains(kind, "MATERNITY")
}
