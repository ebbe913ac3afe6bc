package store

import (
	"github.com/krishdev/permithub/internal/schema"
	bolt "go.etcd.io/bbolt"
)

// UserRepo provides typed CRUD over the users table.
type UserRepo struct {
	env *Env
}

// NewUserRepo returns a repository bound to env's users table.
func NewUserRepo(env *Env) *UserRepo {
	return &UserRepo{env: env}
}

// Save stores user under its ID, overwriting any existing record.
func (r *UserRepo) Save(user *schema.User) error {
	raw, err := encode(user)
	if err != nil {
		return err
	}
	return r.env.update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUsers).Put([]byte(user.ID), raw)
	})
}

// Get returns the user for id; absence is (zero, false, nil).
func (r *UserRepo) Get(id string) (schema.User, bool, error) {
	var user schema.User
	var found bool
	err := r.env.view(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketUsers).Get([]byte(id))
		if raw == nil {
			return nil
		}
		found = true
		return decode(raw, &user)
	})
	if err != nil {
		return schema.User{}, false, err
	}
	return user, found, nil
}

// Delete removes id. Idempotent.
func (r *UserRepo) Delete(id string) error {
	return r.env.update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUsers).Delete([]byte(id))
	})
}

// List returns every user in key order.
func (r *UserRepo) List() ([]schema.User, error) {
	var users []schema.User
	err := r.env.view(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUsers).ForEach(func(_, v []byte) error {
			var user schema.User
			if err := decode(v, &user); err != nil {
				return err
			}
			users = append(users, user)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
