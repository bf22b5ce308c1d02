package catalog

import "strings"

type LessonStatus string

const (
	LessonDraft     LessonStatus = "DRAFT"
	LessonScheduled LessonStatus = "SCHEDULED"
	LessonPublished LessonStatus = "PUBLISHED"
	LessonArchived  LessonStatus = "ARCHIVED"
)

type ProgramStatus string

const (
	ProgramDraft     ProgramStatus = "DRAFT"
	ProgramPublished ProgramStatus = "PUBLISHED"
	ProgramArchived  ProgramStatus = "ARCHIVED"
)

// lessonTransitions lists the edges an editor may request directly.
// SCHEDULED -> PUBLISHED is absent: only the scheduler performs it.
var lessonTransitions = map[LessonStatus][]LessonStatus{
	LessonDraft:     {LessonScheduled, LessonPublished, LessonArchived},
	LessonScheduled: {LessonDraft, LessonArchived},
	LessonPublished: {LessonArchived},
	LessonArchived:  {LessonDraft, LessonPublished},
}

var programTransitions = map[ProgramStatus][]ProgramStatus{
	ProgramDraft:     {ProgramPublished, ProgramArchived},
	ProgramPublished: {ProgramArchived},
	ProgramArchived:  {ProgramDraft, ProgramPublished},
}

func ParseLessonStatus(raw string) (LessonStatus, bool) {
	s := LessonStatus(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := lessonTransitions[s]
	return s, ok
}

func ParseProgramStatus(raw string) (ProgramStatus, bool) {
	s := ProgramStatus(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := programTransitions[s]
	return s, ok
}

// CanTransitionLesson reports whether a manual update may move a lesson from -> to.
// Staying in the same status is always allowed.
func CanTransitionLesson(from, to LessonStatus) bool {
	if from == to {
		return true
	}
	for _, next := range lessonTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func CanTransitionProgram(from, to ProgramStatus) bool {
	if from == to {
		return true
	}
	for _, next := range programTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedLessonTransitions returns the statuses reachable from `from` by a manual update.
func AllowedLessonTransitions(from LessonStatus) []LessonStatus {
	return append([]LessonStatus(nil), lessonTransitions[from]...)
}

func AllowedProgramTransitions(from ProgramStatus) []ProgramStatus {
	return append([]ProgramStatus(nil), programTransitions[from]...)
}
