package finance

import (
	"math"
	"time"

	"karkhana/internal/core"
)

// Payroll is the derived pay position of one staff member for a period.
type Payroll struct {
	StaffID       int64
	PresentDays   int
	HalfDays      int
	AbsentDays    int
	EffectiveDays float64
	Earned        core.Money
	Advances      core.Money
	NetPayable    core.Money
}

// ComputePayroll derives pay from attendance and advances between from and
// to (inclusive). effectiveDays = present + 0.5*halfDays; earned =
// effectiveDays * daily rate; net = earned - advances taken in the period.
func ComputePayroll(staff core.Staff, attendance []core.Attendance, advances []core.Advance, from, to time.Time) Payroll {
	p := Payroll{StaffID: staff.ID}

	for _, a := range attendance {
		if a.StaffID != staff.ID || !inPeriod(a.Date, from, to) {
			continue
		}
		switch a.Status {
		case core.Present:
			p.PresentDays++
		case core.HalfDay:
			p.HalfDays++
		case core.Absent:
			p.AbsentDays++
		}
	}
	p.EffectiveDays = float64(p.PresentDays) + 0.5*float64(p.HalfDays)
	p.Earned = core.Money{Paise: int64(math.Round(p.EffectiveDays * float64(staff.DailyRate.Paise)))}

	for _, adv := range advances {
		if adv.StaffID == staff.ID && inPeriod(adv.Date, from, to) {
			p.Advances = p.Advances.Add(adv.Amount)
		}
	}
	p.NetPayable = p.Earned.Sub(p.Advances)
	return p
}

func inPeriod(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}
