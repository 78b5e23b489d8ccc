package curriculum

import (
	"testing"

	"lms/internal/model"
)

func sectionsFromCompletion(groups ...[]bool) []model.Section {
	var sections []model.Section
	for _, completed := range groups {
		var sec model.Section
		for _, done := range completed {
			sec.Lessons = append(sec.Lessons, model.Lesson{Completed: done})
		}
		sections = append(sections, sec)
	}
	return sections
}

func TestUnlockStates(t *testing.T) {
	cases := []struct {
		name     string
		sections []model.Section
		want     []bool
	}{
		{
			name:     "nothing completed unlocks only the first lesson",
			sections: sectionsFromCompletion([]bool{false, false}, []bool{false}),
			want:     []bool{true, false, false},
		},
		{
			name:     "first completed unlocks the second",
			sections: sectionsFromCompletion([]bool{true, false}, []bool{false}),
			want:     []bool{true, true, false},
		},
		{
			name:     "everything completed unlocks everything",
			sections: sectionsFromCompletion([]bool{true, true}, []bool{true}),
			want:     []bool{true, true, true},
		},
		{
			name:     "unlock crosses section boundaries",
			sections: sectionsFromCompletion([]bool{true, true}, []bool{false, false}),
			want:     []bool{true, true, true, false},
		},
		{
			name:     "gap after an incomplete lesson stays locked",
			sections: sectionsFromCompletion([]bool{true, false, true}),
			want:     []bool{true, true, false},
		},
		{
			name:     "no lessons",
			sections: sectionsFromCompletion(),
			want:     nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := UnlockStates(tc.sections)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d states, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("lesson %d: unlocked=%v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestApplyUnlockStampsLockedFlag(t *testing.T) {
	sections := sectionsFromCompletion([]bool{true, false}, []bool{false})
	ApplyUnlock(sections)

	if sections[0].Lessons[0].Locked {
		t.Error("completed first lesson should be unlocked")
	}
	if sections[0].Lessons[1].Locked {
		t.Error("lesson after the last completed one should be unlocked")
	}
	if !sections[1].Lessons[0].Locked {
		t.Error("lesson past the first incomplete one should be locked")
	}
}
