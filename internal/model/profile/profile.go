// Package profile models the small user-state record mirrored with the chatbot backend.
package profile

import "time"

// DateLayout renders check-in dates in the short month/day/year form.
const DateLayout = "1/2/2006"

// Profile is the local copy of the user's profile.
type Profile struct {
	Name         string `json:"name"`
	FeelingToday string `json:"feelingToday"`
	SleepQuality string `json:"sleepQuality"`
	StressLevel  string `json:"stressLevel"`
	LastCheckIn  string `json:"lastCheckIn"`
	NextFollowUp string `json:"nextFollowUp"`
}

// New returns an empty profile checked in on the given day.
func New(now time.Time) Profile {
	return Profile{LastCheckIn: FormatDate(now)}
}

// Patch is a partial profile. Nil fields were absent on the wire and leave
// the target untouched; non-nil fields overwrite, even when empty.
type Patch struct {
	Name         *string `json:"name,omitempty"`
	FeelingToday *string `json:"feelingToday,omitempty"`
	SleepQuality *string `json:"sleepQuality,omitempty"`
	StressLevel  *string `json:"stressLevel,omitempty"`
	LastCheckIn  *string `json:"lastCheckIn,omitempty"`
	NextFollowUp *string `json:"nextFollowUp,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (p Patch) Empty() bool {
	return p.Name == nil && p.FeelingToday == nil && p.SleepQuality == nil &&
		p.StressLevel == nil && p.LastCheckIn == nil && p.NextFollowUp == nil
}

// Merge applies the patch on top of p, last write wins per field.
func (p Profile) Merge(patch Patch) Profile {
	assign(&p.Name, patch.Name)
	assign(&p.FeelingToday, patch.FeelingToday)
	assign(&p.SleepQuality, patch.SleepQuality)
	assign(&p.StressLevel, patch.StressLevel)
	assign(&p.LastCheckIn, patch.LastCheckIn)
	assign(&p.NextFollowUp, patch.NextFollowUp)
	return p
}

// CheckIn stamps LastCheckIn with the given day.
func (p Profile) CheckIn(now time.Time) Profile {
	p.LastCheckIn = FormatDate(now)
	return p
}

// ScheduleFollowUp sets NextFollowUp to days after now.
func (p Profile) ScheduleFollowUp(now time.Time, days int) Profile {
	p.NextFollowUp = FormatDate(now.AddDate(0, 0, days))
	return p
}

// FormatDate renders t with DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
