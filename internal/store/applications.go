package store

import (
	"github.com/krishdev/permithub/internal/schema"
	bolt "go.etcd.io/bbolt"
)

// ApplicationRepo provides typed CRUD over the applications table, one
// environment transaction per operation.
type ApplicationRepo struct {
	env *Env
}

// NewApplicationRepo returns a repository bound to env's applications table.
func NewApplicationRepo(env *Env) *ApplicationRepo {
	return &ApplicationRepo{env: env}
}

// Save stores app under its ID, overwriting any existing record.
func (r *ApplicationRepo) Save(app *schema.Application) error {
	raw, err := encode(app)
	if err != nil {
		return err
	}
	return r.env.update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketApplications).Put([]byte(app.ID), raw)
	})
}

// Get returns the application for id; absence is (zero, false, nil).
func (r *ApplicationRepo) Get(id string) (schema.Application, bool, error) {
	var app schema.Application
	var found bool
	err := r.env.view(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketApplications).Get([]byte(id))
		if raw == nil {
			return nil
		}
		found = true
		return decode(raw, &app)
	})
	if err != nil {
		return schema.Application{}, false, err
	}
	return app, found, nil
}

// Delete removes id. Idempotent: deleting an absent key succeeds.
func (r *ApplicationRepo) Delete(id string) error {
	return r.env.update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketApplications).Delete([]byte(id))
	})
}

// List returns every application in key order.
func (r *ApplicationRepo) List() ([]schema.Application, error) {
	var apps []schema.Application
	err := r.env.view(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketApplications).ForEach(func(_, v []byte) error {
			var app schema.Application
			if err := decode(v, &app); err != nil {
				return err
			}
			apps = append(apps, app)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return apps, nil
}
