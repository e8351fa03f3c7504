package user

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/catalog/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrExists             = errors.New("a user with this id already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	// Repository persists users, one collection per Role.
	Repository interface {
		LoadUsers(role Role) ([]User, error)
		SaveUser(usr User) error
		DeleteUser(role Role, id int) error
	}

	// Service is the in-memory user registry. Every mutation writes through to the Repository.
	Service struct {
		repo   Repository
		logger core.Logger

		mu    sync.RWMutex
		users map[Role]map[int]*User
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	svc := &Service{repo: repo, logger: logger}
	svc.Reset()
	return svc
}

// Reset clears every in-memory collection. Files are left untouched.
func (svc *Service) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.users = make(map[Role]map[int]*User, len(Roles))
	for _, role := range Roles {
		svc.users[role] = make(map[int]*User)
	}
}

// Load replaces the in-memory registry with the content of the Repository.
func (svc *Service) Load() error {
	loaded := make(map[Role]map[int]*User, len(Roles))
	for _, role := range Roles {
		users, err := svc.repo.LoadUsers(role)
		if err != nil {
			return errors.Wrapf(err, "loading %ss", role)
		}
		table := make(map[int]*User, len(users))
		for i := range users {
			usr := users[i]
			usr.Role = role
			if _, ok := table[usr.ID]; ok {
				svc.logger.Warn(fmt.Sprintf("skipping duplicate %s id %d", role, usr.ID))
				continue
			}
			table[usr.ID] = &usr
		}
		loaded[role] = table
	}

	svc.mu.Lock()
	svc.users = loaded
	svc.mu.Unlock()
	return nil
}

// Create inserts a new User and writes it through. Nothing is written on failure.
func (svc *Service) Create(nu NewUser) (*User, error) {
	if err := nu.Validate(); err != nil {
		return nil, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if _, ok := svc.users[nu.Role][nu.ID]; ok {
		return nil, core.NewConflictError(errors.Wrapf(ErrExists, "%s %d", nu.Role, nu.ID))
	}
	usr := &User{
		ID:       nu.ID,
		Name:     nu.Name,
		Username: nu.Username,
		Password: nu.Password,
		Role:     nu.Role,
	}
	svc.users[usr.Role][usr.ID] = usr
	if err := svc.repo.SaveUser(*usr); err != nil {
		return usr, errors.Wrapf(err, "saving %s %d", usr.Role, usr.ID)
	}
	return usr, nil
}

// Update replaces a User by deleting it then recreating it with the new values.
// References held elsewhere keep pointing at the old value until they are resolved again.
func (svc *Service) Update(role Role, id int, uu UpdateUser) (*User, error) {
	if err := uu.Validate(); err != nil {
		return nil, err
	}
	orig, err := svc.GetByID(role, id)
	if err != nil {
		return nil, err
	}

	nu := NewUser{
		ID:       orig.ID,
		Role:     orig.Role,
		Name:     orig.Name,
		Username: orig.Username,
		Password: orig.Password,
	}
	if uu.Name != "" {
		nu.Name = uu.Name
	}
	if uu.Username != "" {
		nu.Username = uu.Username
	}
	if uu.Password != "" {
		nu.Password = uu.Password
	}
	if err = nu.Validate(); err != nil {
		return nil, err
	}

	if err = svc.Delete(role, id); err != nil {
		return nil, err
	}
	return svc.Create(nu)
}

// Delete removes a User and its file. Courses referencing it are not touched.
func (svc *Service) Delete(role Role, id int) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	table, ok := svc.users[role]
	if !ok {
		return core.NewNotFoundError(errors.Wrapf(ErrNotFound, "%s %d", role, id))
	}
	if _, ok = table[id]; !ok {
		return core.NewNotFoundError(errors.Wrapf(ErrNotFound, "%s %d", role, id))
	}
	delete(table, id)
	if err := svc.repo.DeleteUser(role, id); err != nil {
		return errors.Wrapf(err, "deleting %s %d", role, id)
	}
	return nil
}

func (svc *Service) GetByID(role Role, id int) (*User, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	if usr, ok := svc.users[role][id]; ok {
		return usr, nil
	}
	return nil, core.NewNotFoundError(errors.Wrapf(ErrNotFound, "%s %d", role, id))
}

// QueryAll returns the users of a role sorted by id.
func (svc *Service) QueryAll(role Role) []*User {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	users := make([]*User, 0, len(svc.users[role]))
	for _, usr := range svc.users[role] {
		users = append(users, usr)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

// Index returns a lookup table of the users of a role.
func (svc *Service) Index(role Role) map[int]*User {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	idx := make(map[int]*User, len(svc.users[role]))
	for id, usr := range svc.users[role] {
		idx[id] = usr
	}
	return idx
}

// Authenticate looks for matching credentials among admins, then teachers, then students.
func (svc *Service) Authenticate(username, password string) (*User, error) {
	username = core.CleanString(username)
	for _, role := range Roles {
		for _, usr := range svc.QueryAll(role) {
			if usr.Username == username && usr.CheckPassword(password) {
				return usr, nil
			}
		}
	}
	return nil, core.NewNotFoundError(ErrInvalidCredentials)
}

// SaveAll writes every user through. A failure is logged and does not stop the pass.
func (svc *Service) SaveAll() error {
	var failed int
	for _, role := range Roles {
		for _, usr := range svc.QueryAll(role) {
			if err := svc.repo.SaveUser(*usr); err != nil {
				failed++
				svc.logger.Error(fmt.Sprintf("saving %s %d failed: %v", role, usr.ID, err), err)
			}
		}
	}
	if failed > 0 {
		return errors.Errorf("saving users: %d failed", failed)
	}
	return nil
}
