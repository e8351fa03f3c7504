package testutil

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/trezcool/catalog/core"
	"github.com/trezcool/catalog/core/catalog"
	"github.com/trezcool/catalog/core/user"
	"github.com/trezcool/catalog/storage/flatfile"
)

const FileExt = ".csv"

// Entry is one recorded log call.
type Entry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger records every call in memory.
type Logger struct {
	mu      sync.Mutex
	entries []Entry
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { panic(fmt.Sprintf("fatal: %s", msg)) }

// Entries returns the recorded calls of a level.
func (l *Logger) Entries(level string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var res []Entry
	for _, e := range l.entries {
		if e.Level == level {
			res = append(res, e)
		}
	}
	return res
}

// OpenDB opens a storage root inside a temp dir removed at the end of the test.
func OpenDB(t *testing.T, logger core.Logger) *flatfile.DB {
	t.Helper()
	db, err := flatfile.Open(filepath.Join(t.TempDir(), "data"), FileExt, logger)
	if err != nil {
		t.Fatalf("flatfile.Open() failed: %v", err)
	}
	return db
}

// NewStore wires a Store on top of `db`.
func NewStore(db *flatfile.DB, logger core.Logger) *catalog.Store {
	usrSvc := user.NewService(flatfile.NewUserRepository(db), logger)
	return catalog.NewStore(usrSvc, flatfile.NewCourseRepository(db), db, logger)
}

// PrepareStore returns an empty Store over a fresh storage root, with its DB and Logger.
func PrepareStore(t *testing.T) (*catalog.Store, *flatfile.DB, *Logger) {
	t.Helper()
	logger := &Logger{}
	db := OpenDB(t, logger)
	return NewStore(db, logger), db, logger
}

func CreateUser(t *testing.T, store *catalog.Store, role user.Role, id int, name, uname, pwd string) *user.User {
	t.Helper()
	usr, err := store.CreateUser(user.NewUser{
		ID:       id,
		Role:     role,
		Name:     name,
		Username: uname,
		Password: pwd,
	})
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(t *testing.T, store *catalog.Store, id, title string, maxCapacity int) {
	t.Helper()
	if _, err := store.CreateCourse(catalog.NewCourse{ID: id, Title: title, MaxCapacity: maxCapacity}); err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
}
