package store

import (
	"github.com/krishdev/permithub/internal/schema"
	bolt "go.etcd.io/bbolt"
)

// OrderRepo provides typed CRUD over the orders table. Every method wraps
// exactly one environment transaction; storage errors pass through to the
// caller unmodified.
type OrderRepo struct {
	env *Env
}

// NewOrderRepo returns a repository bound to env's orders table.
func NewOrderRepo(env *Env) *OrderRepo {
	return &OrderRepo{env: env}
}

// Save stores order under its ID, overwriting any existing record for that
// key. Save and update are the same primitive.
func (r *OrderRepo) Save(order *schema.Order) error {
	raw, err := encode(order)
	if err != nil {
		return err
	}
	return r.env.update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketOrders).Put([]byte(order.ID), raw)
	})
}

// Get returns the order for id. Absence is reported via the second return
// value, not as an error.
func (r *OrderRepo) Get(id string) (schema.Order, bool, error) {
	var order schema.Order
	var found bool
	err := r.env.view(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketOrders).Get([]byte(id))
		if raw == nil {
			return nil
		}
		found = true
		return decode(raw, &order)
	})
	if err != nil {
		return schema.Order{}, false, err
	}
	return order, found, nil
}

// Delete removes id from the table. Deleting an absent key is not an error.
func (r *OrderRepo) Delete(id string) error {
	return r.env.update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketOrders).Delete([]byte(id))
	})
}

// List returns every order in the table in key order. Intended for small
// tables; there is no pagination.
func (r *OrderRepo) List() ([]schema.Order, error) {
	var orders []schema.Order
	err := r.env.view(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketOrders).ForEach(func(_, v []byte) error {
			var order schema.Order
			if err := decode(v, &order); err != nil {
				return err
			}
			orders = append(orders, order)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}
