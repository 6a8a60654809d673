package database

import (
	"time"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	log "github.com/sirupsen/logrus"
)

type (
	// KeyValueStore implements storage.KeyValue on top of a MongoDB
	// collection holding one document per key
	KeyValueStore struct {
		db         *DB
		collection string
	}

	// kvDoc is the stored form of a single key
	kvDoc struct {
		Key     string    `bson:"_id"`
		Value   string    `bson:"value"`
		Created time.Time `bson:"created"`
	}
)

// NewKeyValueStore makes sure the collection exists and returns a store
// backed by it
func NewKeyValueStore(db *DB, collection string) (*KeyValueStore, error) {
	if !db.CollectionExists(collection) {
		indexes := []mgo.Index{
			{Key: []string{"created"}},
		}
		if err := db.CreateCollection(collection, indexes); err != nil {
			// another process may have created it in the mean time
			if !db.CollectionExists(collection) {
				return nil, err
			}
		}
	}
	return &KeyValueStore{db: db, collection: collection}, nil
}

// Get returns the value stored at key
func (k *KeyValueStore) Get(key string) ([]byte, bool, error) {
	ssn := k.db.Session.Copy()
	defer ssn.Close()

	var doc kvDoc
	err := ssn.DB(k.db.GetSelectedDB()).C(k.collection).FindId(key).One(&doc)
	if err == mgo.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(doc.Value), true, nil
}

// Set replaces the value stored at key
func (k *KeyValueStore) Set(key string, value []byte) error {
	ssn := k.db.Session.Copy()
	defer ssn.Close()

	_, err := ssn.DB(k.db.GetSelectedDB()).C(k.collection).UpsertId(key, bson.M{
		"$set":         bson.M{"value": string(value)},
		"$setOnInsert": bson.M{"created": time.Now()},
	})
	return err
}

// Remove deletes key if present
func (k *KeyValueStore) Remove(key string) error {
	ssn := k.db.Session.Copy()
	defer ssn.Close()

	err := ssn.DB(k.db.GetSelectedDB()).C(k.collection).RemoveId(key)
	if err == mgo.ErrNotFound {
		return nil
	}
	return err
}

// Keys lists the stored keys, oldest first
func (k *KeyValueStore) Keys() ([]string, error) {
	ssn := k.db.Session.Copy()
	defer ssn.Close()

	iter := ssn.DB(k.db.GetSelectedDB()).C(k.collection).
		Find(nil).Select(bson.M{"_id": 1}).Sort("created").Iter()

	var doc struct {
		Key string `bson:"_id"`
	}
	var keys []string
	for iter.Next(&doc) {
		keys = append(keys, doc.Key)
	}
	if err := iter.Close(); err != nil {
		k.db.log.WithFields(log.Fields{
			"error":      err.Error(),
			"collection": k.collection,
		}).Error("Failed listing keys")
		return nil, err
	}
	return keys, nil
}

// Close tears down the underlying session
func (k *KeyValueStore) Close() error {
	return k.db.Close()
}
