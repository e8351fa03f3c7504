package course

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/catalog/core"
	"github.com/trezcool/catalog/core/user"
)

// NoGrade is returned by Course.FinalGrade for a student without any recorded score.
const NoGrade = -1.0

const (
	MinScore = 0
	MaxScore = 100

	DefaultAssignmentTitle = "Untitled"
)

var (
	// errors
	ErrNotFound           = errors.New("course not found")
	ErrExists             = errors.New("a course with this id already exists")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrAlreadyEnrolled    = errors.New("student already enrolled")
	ErrCourseFull         = errors.New("course full")
	ErrInvalidScore       = errors.New("score must be between 0 and 100")
)

type Assignment struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// GradeEntry is one cell of a course's grade table.
type GradeEntry struct {
	AssignmentID string `json:"assignment_id"`
	StudentID    int    `json:"student_id"`
	Score        int    `json:"score"`
}

// SubmissionEntry records that a student submitted an assignment.
type SubmissionEntry struct {
	AssignmentID string `json:"assignment_id"`
	StudentID    int    `json:"student_id"`
}

// Course owns its roster, assignments, grades and submissions.
// The teacher is a shared User, referenced but not owned.
type Course struct {
	id          string
	title       string
	maxCapacity int

	teacher     *user.User
	students    []int
	assignments []Assignment
	grades      map[string]map[int]int
	submissions map[string]map[int]struct{}
}

// New returns an empty Course. A maxCapacity <= 0 is a real bound: nobody can enroll.
func New(id, title string, maxCapacity int) *Course {
	return &Course{
		id:          id,
		title:       title,
		maxCapacity: maxCapacity,
		grades:      make(map[string]map[int]int),
		submissions: make(map[string]map[int]struct{}),
	}
}

func (c *Course) ID() string       { return c.id }
func (c *Course) Title() string    { return c.title }
func (c *Course) MaxCapacity() int { return c.maxCapacity }

func (c *Course) Teacher() *user.User { return c.teacher }

// TeacherID returns the id of the assigned teacher, if any.
func (c *Course) TeacherID() (int, bool) {
	if c.teacher == nil {
		return 0, false
	}
	return c.teacher.ID, true
}

// SetTeacher assigns the course teacher; nil clears it.
func (c *Course) SetTeacher(t *user.User) {
	c.teacher = t
}

// StudentIDs returns the roster in enrollment order.
func (c *Course) StudentIDs() []int {
	ids := make([]int, len(c.students))
	copy(ids, c.students)
	return ids
}

func (c *Course) IsEnrolled(studentID int) bool {
	for _, id := range c.students {
		if id == studentID {
			return true
		}
	}
	return false
}

func (c *Course) IsFull() bool {
	return len(c.students) >= c.maxCapacity
}

// Enroll appends a student to the roster. Nothing changes on failure.
func (c *Course) Enroll(studentID int) error {
	if c.IsEnrolled(studentID) {
		return core.NewConflictError(errors.Wrapf(ErrAlreadyEnrolled, "student %d in course %s", studentID, c.id))
	}
	if c.IsFull() {
		return core.NewCapacityError(errors.Wrapf(ErrCourseFull, "course %s (max %d)", c.id, c.maxCapacity))
	}
	c.students = append(c.students, studentID)
	return nil
}

// Assignments returns the assignments in creation order.
func (c *Course) Assignments() []Assignment {
	as := make([]Assignment, len(c.assignments))
	copy(as, c.assignments)
	return as
}

func (c *Course) HasAssignment(assignmentID string) bool {
	return c.assignmentIndex(assignmentID) >= 0
}

func (c *Course) assignmentIndex(assignmentID string) int {
	for i, a := range c.assignments {
		if a.ID == assignmentID {
			return i
		}
	}
	return -1
}

// AddAssignment appends `a` unless an assignment with the same id exists. It reports whether `a` was added.
func (c *Course) AddAssignment(a Assignment) bool {
	if c.HasAssignment(a.ID) {
		return false
	}
	c.assignments = append(c.assignments, a)
	return true
}

// SetGrade records a score, replacing any previous one for the same assignment and student.
func (c *Course) SetGrade(assignmentID string, studentID, score int) error {
	if !c.HasAssignment(assignmentID) {
		return core.NewNotFoundError(errors.Wrapf(ErrAssignmentNotFound, "%s in course %s", assignmentID, c.id))
	}
	if err := checkScore(score); err != nil {
		return err
	}
	c.setGrade(assignmentID, studentID, score)
	return nil
}

func (c *Course) setGrade(assignmentID string, studentID, score int) {
	byStudent, ok := c.grades[assignmentID]
	if !ok {
		byStudent = make(map[int]int)
		c.grades[assignmentID] = byStudent
	}
	byStudent[studentID] = score
}

func checkScore(score int) error {
	if score < MinScore || score > MaxScore {
		return core.NewValidationError(
			errors.Wrapf(ErrInvalidScore, "got %d", score),
			core.FieldError{Field: "score", Error: ErrInvalidScore.Error()},
		)
	}
	return nil
}

func (c *Course) Grade(assignmentID string, studentID int) (int, bool) {
	score, ok := c.grades[assignmentID][studentID]
	return score, ok
}

// FinalGrade is the mean of every score recorded for the student, or NoGrade when there is none.
func (c *Course) FinalGrade(studentID int) float64 {
	var total, count int
	for _, byStudent := range c.grades {
		if score, ok := byStudent[studentID]; ok {
			total += score
			count++
		}
	}
	if count == 0 {
		return NoGrade
	}
	return float64(total) / float64(count)
}

// Grades returns the grade table ordered by assignment (creation order, unknown ids last) then student id.
func (c *Course) Grades() []GradeEntry {
	entries := make([]GradeEntry, 0)
	for _, aid := range assignmentKeys(c, c.grades) {
		for _, sid := range sortedStudentIDs(c.grades[aid]) {
			entries = append(entries, GradeEntry{AssignmentID: aid, StudentID: sid, Score: c.grades[aid][sid]})
		}
	}
	return entries
}

func (c *Course) MarkSubmitted(assignmentID string, studentID int) {
	byStudent, ok := c.submissions[assignmentID]
	if !ok {
		byStudent = make(map[int]struct{})
		c.submissions[assignmentID] = byStudent
	}
	byStudent[studentID] = struct{}{}
}

func (c *Course) HasSubmitted(assignmentID string, studentID int) bool {
	_, ok := c.submissions[assignmentID][studentID]
	return ok
}

// Submissions returns the submission table with the same ordering as Grades.
func (c *Course) Submissions() []SubmissionEntry {
	entries := make([]SubmissionEntry, 0)
	for _, aid := range assignmentKeys(c, c.submissions) {
		for _, sid := range sortedStudentIDs(c.submissions[aid]) {
			entries = append(entries, SubmissionEntry{AssignmentID: aid, StudentID: sid})
		}
	}
	return entries
}

// assignmentKeys sorts assignment ids by their position in the course, ids without an assignment go last.
func assignmentKeys[V any](c *Course, m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, pj := c.assignmentIndex(keys[i]), c.assignmentIndex(keys[j])
		switch {
		case pi >= 0 && pj >= 0:
			return pi < pj
		case pi >= 0 || pj >= 0:
			return pi >= 0
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

func sortedStudentIDs[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
