package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/catalog/core"
	"github.com/trezcool/catalog/core/course"
	"github.com/trezcool/catalog/core/user"
)

type (
	// Purger wipes the whole storage root.
	Purger interface {
		Purge() error
	}

	// Store owns the in-memory catalog and is the only way to mutate the files behind it.
	// Every mutation changes memory first, then writes the affected file through.
	// A failed write is returned and memory is not rolled back.
	Store struct {
		users  *user.Service
		repo   course.Repository
		purger Purger
		logger core.Logger

		mu      sync.RWMutex
		courses map[string]*course.Course
	}
)

func NewStore(users *user.Service, courses course.Repository, purger Purger, logger core.Logger) *Store {
	return &Store{
		users:   users,
		repo:    courses,
		purger:  purger,
		logger:  logger,
		courses: make(map[string]*course.Course),
	}
}

// LoadAll replaces the in-memory catalog with the content of storage: users first, then courses,
// whose teacher and roster references are resolved against the loaded users.
func (s *Store) LoadAll() error {
	if err := s.users.Load(); err != nil {
		return errors.Wrap(err, "loading users")
	}
	records, err := s.repo.LoadCourses()
	if err != nil {
		return errors.Wrap(err, "loading courses")
	}

	courses := make(map[string]*course.Course, len(records))
	linked := course.Link(records, s.users.Index(user.RoleTeacher), s.users.Index(user.RoleStudent))
	for _, c := range linked {
		if _, ok := courses[c.ID()]; ok {
			s.logger.Warn(fmt.Sprintf("skipping duplicate course id %q", c.ID()))
			continue
		}
		courses[c.ID()] = c
	}

	s.mu.Lock()
	s.courses = courses
	s.mu.Unlock()
	return nil
}

// SaveAll writes every user and the four files of every course. A failing entity is logged
// and the pass goes on; the returned error counts the failures.
func (s *Store) SaveAll() error {
	var failed int
	if err := s.users.SaveAll(); err != nil {
		failed++
		s.logger.Error("saving users failed", err)
	}
	for _, c := range s.Courses() {
		if err := s.saveCourse(c); err != nil {
			failed++
			s.logger.Error(fmt.Sprintf("saving course %q failed", c.ID()), err)
		}
	}
	if failed > 0 {
		return errors.Errorf("save all: %d failed", failed)
	}
	return nil
}

func (s *Store) saveCourse(c *course.Course) error {
	var firstErr error
	for _, save := range []func(*course.Course) error{
		s.repo.SaveCourse,
		s.repo.SaveAssignments,
		s.repo.SaveGrades,
		s.repo.SaveSubmissions,
	} {
		if err := save(c); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ResetAllData deletes the storage root and clears every in-memory collection.
// Asking for confirmation is up to the caller.
func (s *Store) ResetAllData() error {
	s.mu.Lock()
	s.courses = make(map[string]*course.Course)
	s.mu.Unlock()
	s.users.Reset()

	if err := s.purger.Purge(); err != nil {
		return errors.Wrap(err, "purging storage")
	}
	s.logger.Info("all data deleted")
	return nil
}

// Users

func (s *Store) CreateUser(nu user.NewUser) (*user.User, error) {
	return s.users.Create(nu)
}

func (s *Store) CreateAdmin(id int, name, username, password string) (*user.User, error) {
	return s.createUser(user.RoleAdmin, id, name, username, password)
}

func (s *Store) CreateTeacher(id int, name, username, password string) (*user.User, error) {
	return s.createUser(user.RoleTeacher, id, name, username, password)
}

func (s *Store) CreateStudent(id int, name, username, password string) (*user.User, error) {
	return s.createUser(user.RoleStudent, id, name, username, password)
}

func (s *Store) createUser(role user.Role, id int, name, username, password string) (*user.User, error) {
	return s.users.Create(user.NewUser{
		ID:       id,
		Role:     role,
		Name:     name,
		Username: username,
		Password: password,
	})
}

// UpdateUser replaces a user. Courses keep pointing at the previous teacher value until the next load.
func (s *Store) UpdateUser(role user.Role, id int, uu user.UpdateUser) (*user.User, error) {
	return s.users.Update(role, id, uu)
}

// DeleteUser removes a user. Rosters, grades and submissions referencing it are left as they are.
func (s *Store) DeleteUser(role user.Role, id int) error {
	return s.users.Delete(role, id)
}

func (s *Store) Users(role user.Role) []*user.User {
	return s.users.QueryAll(role)
}

func (s *Store) User(role user.Role, id int) (*user.User, error) {
	return s.users.GetByID(role, id)
}

func (s *Store) Authenticate(username, password string) (*user.User, error) {
	return s.users.Authenticate(username, password)
}

// Courses

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	ID          string `json:"id" validate:"notblank"`
	Title       string `json:"title" validate:"notblank"`
	MaxCapacity int    `json:"max_capacity" validate:"gte=0"`
}

func (nc *NewCourse) Validate() error {
	nc.ID = core.CleanString(nc.ID)
	nc.Title = core.CleanString(nc.Title)
	return core.ValidateStruct(nc)
}

// NewAssignment contains information needed to add an Assignment to a Course.
type NewAssignment struct {
	ID    string `json:"id" validate:"notblank"`
	Title string `json:"title"`
}

func (na *NewAssignment) Validate() error {
	na.ID = core.CleanString(na.ID)
	na.Title = core.CleanString(na.Title)
	if na.Title == "" {
		na.Title = course.DefaultAssignmentTitle
	}
	return core.ValidateStruct(na)
}

// NewGrade contains information needed to grade a student.
type NewGrade struct {
	AssignmentID string `json:"assignment_id" validate:"notblank"`
	StudentID    int    `json:"student_id" validate:"gte=0"`
	Score        int    `json:"score" validate:"gte=0,lte=100"`
}

func (ng *NewGrade) Validate() error {
	ng.AssignmentID = core.CleanString(ng.AssignmentID)
	return core.ValidateStruct(ng)
}

// CreateCourse adds an empty course and writes its identity file only.
func (s *Store) CreateCourse(nc NewCourse) (*course.Course, error) {
	if err := nc.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[nc.ID]; ok {
		return nil, core.NewConflictError(errors.Wrapf(course.ErrExists, "course %s", nc.ID))
	}
	c := course.New(nc.ID, nc.Title, nc.MaxCapacity)
	s.courses[c.ID()] = c
	if err := s.repo.SaveCourse(c); err != nil {
		return c, errors.Wrapf(err, "saving course %s", c.ID())
	}
	return c, nil
}

func (s *Store) course(id string) (*course.Course, error) {
	if c, ok := s.courses[id]; ok {
		return c, nil
	}
	return nil, core.NewNotFoundError(errors.Wrapf(course.ErrNotFound, "course %s", id))
}

func (s *Store) AssignTeacher(courseID string, teacherID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.course(courseID)
	if err != nil {
		return err
	}
	teacher, err := s.users.GetByID(user.RoleTeacher, teacherID)
	if err != nil {
		return err
	}
	c.SetTeacher(teacher)
	if err = s.repo.SaveCourse(c); err != nil {
		return errors.Wrapf(err, "saving course %s", c.ID())
	}
	return nil
}

func (s *Store) EnrollStudent(courseID string, studentID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.course(courseID)
	if err != nil {
		return err
	}
	if _, err = s.users.GetByID(user.RoleStudent, studentID); err != nil {
		return err
	}
	if err = c.Enroll(studentID); err != nil {
		return err
	}
	if err = s.repo.SaveCourse(c); err != nil {
		return errors.Wrapf(err, "saving course %s", c.ID())
	}
	return nil
}

// AddAssignment appends an assignment to a course. A duplicate id changes nothing and reports false.
func (s *Store) AddAssignment(courseID string, na NewAssignment) (bool, error) {
	if err := na.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.course(courseID)
	if err != nil {
		return false, err
	}
	if !c.AddAssignment(course.Assignment{ID: na.ID, Title: na.Title}) {
		return false, nil
	}
	if err = s.repo.SaveAssignments(c); err != nil {
		return true, errors.Wrapf(err, "saving assignments of %s", c.ID())
	}
	return true, nil
}

// SetGrade records or replaces a score. The student does not need to be enrolled.
func (s *Store) SetGrade(courseID string, ng NewGrade) error {
	if err := ng.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.course(courseID)
	if err != nil {
		return err
	}
	if err = c.SetGrade(ng.AssignmentID, ng.StudentID, ng.Score); err != nil {
		return err
	}
	if err = s.repo.SaveGrades(c); err != nil {
		return errors.Wrapf(err, "saving grades of %s", c.ID())
	}
	return nil
}

// MarkSubmitted flags a submission. Marking twice is a no-op.
func (s *Store) MarkSubmitted(courseID, assignmentID string, studentID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.course(courseID)
	if err != nil {
		return err
	}
	if !c.HasAssignment(assignmentID) {
		return core.NewNotFoundError(errors.Wrapf(course.ErrAssignmentNotFound, "%s in course %s", assignmentID, c.ID()))
	}
	c.MarkSubmitted(assignmentID, studentID)
	if err = s.repo.SaveSubmissions(c); err != nil {
		return errors.Wrapf(err, "saving submissions of %s", c.ID())
	}
	return nil
}

// Queries

func (s *Store) Course(id string) (*course.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.course(id)
}

// Courses returns every course sorted by id.
func (s *Store) Courses() []*course.Course {
	return s.filterCourses(func(*course.Course) bool { return true })
}

func (s *Store) CoursesForTeacher(teacherID int) []*course.Course {
	return s.filterCourses(func(c *course.Course) bool {
		tid, ok := c.TeacherID()
		return ok && tid == teacherID
	})
}

func (s *Store) CoursesForStudent(studentID int) []*course.Course {
	return s.filterCourses(func(c *course.Course) bool { return c.IsEnrolled(studentID) })
}

func (s *Store) filterCourses(keep func(*course.Course) bool) []*course.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()

	courses := make([]*course.Course, 0, len(s.courses))
	for _, c := range s.courses {
		if keep(c) {
			courses = append(courses, c)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID() < courses[j].ID() })
	return courses
}

func (s *Store) HasSubmitted(courseID, assignmentID string, studentID int) (bool, error) {
	c, err := s.Course(courseID)
	if err != nil {
		return false, err
	}
	return c.HasSubmitted(assignmentID, studentID), nil
}

func (s *Store) Grade(courseID, assignmentID string, studentID int) (int, bool, error) {
	c, err := s.Course(courseID)
	if err != nil {
		return 0, false, err
	}
	score, ok := c.Grade(assignmentID, studentID)
	return score, ok, nil
}

// FinalGrade returns course.NoGrade for a student without any score.
func (s *Store) FinalGrade(courseID string, studentID int) (float64, error) {
	c, err := s.Course(courseID)
	if err != nil {
		return course.NoGrade, err
	}
	return c.FinalGrade(studentID), nil
}
