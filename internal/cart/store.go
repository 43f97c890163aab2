package cart

import (
	"encoding/binary"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/openmallhq/openmall/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var cartBucket = []byte("carts")

// Store persists carts in an embedded bbolt database, one record per user.
// Carts survive process restarts and user sessions until explicitly cleared.
type Store struct {
	db *bolt.DB
}

func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open cart store")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cartBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init cart bucket")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the user's cart, an empty cart when none is stored.
func (s *Store) Load(userID int64) (*domain.Cart, error) {
	cart := &domain.Cart{UserID: userID}
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(cartBucket).Get(userKey(userID))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, cart)
	})
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	cart.UserID = userID
	return cart, nil
}

func (s *Store) Save(cart *domain.Cart) error {
	cart.UpdatedAt = time.Now()
	data, err := json.Marshal(cart)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cartBucket).Put(userKey(cart.UserID), data)
	})
	return errors.Wrap(err, "save cart")
}

func (s *Store) Delete(userID int64) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cartBucket).Delete(userKey(userID))
	})
	return errors.Wrap(err, "delete cart")
}

// PurgeStale removes carts whose UpdatedAt is older than the cutoff and
// returns how many were dropped.
func (s *Store) PurgeStale(olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	var purged int
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(cartBucket)
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var cart domain.Cart
			if err := json.Unmarshal(v, &cart); err != nil {
				continue
			}
			if cart.UpdatedAt.Before(cutoff) {
				if err := c.Delete(); err != nil {
					return err
				}
				purged++
			}
		}
		return nil
	})
	return purged, errors.Wrap(err, "purge carts")
}

func userKey(userID int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(userID))
	return key
}
