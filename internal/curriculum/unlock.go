package curriculum

import "lms/internal/model"

// UnlockStates walks lessons in section-then-lesson order and returns, in
// the same order, whether each lesson is unlocked for the learner. Every
// lesson up to and including the first incomplete one is unlocked; everything
// after it is locked. All lessons are unlocked when all are complete.
func UnlockStates(sections []model.Section) []bool {
	var states []bool
	open := true
	for _, sec := range sections {
		for _, l := range sec.Lessons {
			states = append(states, open)
			if open && !l.Completed {
				open = false
			}
		}
	}
	return states
}

// ApplyUnlock stamps the Locked flag onto every lesson in place.
func ApplyUnlock(sections []model.Section) {
	states := UnlockStates(sections)
	i := 0
	for si := range sections {
		for li := range sections[si].Lessons {
			sections[si].Lessons[li].Locked = !states[i]
			i++
		}
	}
}
