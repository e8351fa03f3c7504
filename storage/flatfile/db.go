package flatfile

import (
	"os"
	"path/filepath"

	"github.com/trezcool/catalog/core"
	"github.com/trezcool/catalog/core/course"
	"github.com/trezcool/catalog/core/user"
)

type (
	// DB is a storage root holding one directory per entity kind.
	DB struct {
		root   string
		ext    string
		logger core.Logger

		users       map[user.Role]*Table[user.User]
		courses     *Table[course.Record]
		assignments *Table[course.Assignment]
		grades      *Table[course.GradeEntry]
		submissions *Table[course.SubmissionEntry]
	}
)

// directory of each user role
var roleDirs = map[user.Role]string{
	user.RoleAdmin:   "admins",
	user.RoleTeacher: "teachers",
	user.RoleStudent: "students",
}

// Open creates the storage root if needed. Entity directories are created on first write.
func Open(root, ext string, logger core.Logger) (*DB, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, core.NewStorageError(root, err)
	}
	db := &DB{
		root:   root,
		ext:    ext,
		logger: logger,
		users:  make(map[user.Role]*Table[user.User], len(roleDirs)),
	}
	for role, dir := range roleDirs {
		db.users[role] = newTable(db.dir(dir), ext, userCodec, logger)
	}
	db.courses = newTable(db.dir("courses"), ext, courseCodec, logger)
	db.assignments = newTable(db.dir("assignments"), ext, assignmentCodec, logger)
	db.grades = newTable(db.dir("grades"), ext, gradeCodec, logger)
	db.submissions = newTable(db.dir("submissions"), ext, submissionCodec, logger)
	return db, nil
}

func (db *DB) Root() string { return db.root }

func (db *DB) dir(name string) string { return filepath.Join(db.root, name) }

// Purge removes the storage root and everything below it.
func (db *DB) Purge() error {
	if err := os.RemoveAll(db.root); err != nil {
		return core.NewStorageError(db.root, err)
	}
	return nil
}
