package flatfile

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/catalog/core/user"
)

// row: id,name,username,password
var userCodec = rowCodec[user.User]{
	columns: 4,
	encode: func(usr user.User) []string {
		return []string{strconv.Itoa(usr.ID), usr.Name, usr.Username, usr.Password}
	},
	decode: func(f []string) (user.User, error) {
		id, err := parseID(f[0])
		if err != nil {
			return user.User{}, errors.Wrap(err, "user id")
		}
		return user.User{ID: id, Name: f[1], Username: f[2], Password: f[3]}, nil
	},
}

// parseID reads a non-negative integer id.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if id < 0 {
		return 0, errors.Errorf("negative id %d", id)
	}
	return id, nil
}

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) table(role user.Role) (*Table[user.User], error) {
	tbl, ok := repo.db.users[role]
	if !ok {
		return nil, errors.Errorf("unknown role %q", role)
	}
	return tbl, nil
}

func (repo *userRepository) LoadUsers(role user.Role) ([]user.User, error) {
	tbl, err := repo.table(role)
	if err != nil {
		return nil, err
	}
	users, err := tbl.List()
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Role = role
	}
	return users, nil
}

func (repo *userRepository) SaveUser(usr user.User) error {
	tbl, err := repo.table(usr.Role)
	if err != nil {
		return err
	}
	return tbl.Put(strconv.Itoa(usr.ID), usr)
}

func (repo *userRepository) DeleteUser(role user.Role, id int) error {
	tbl, err := repo.table(role)
	if err != nil {
		return err
	}
	return tbl.Delete(strconv.Itoa(id))
}
