package storage

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	// File is a KeyValue persisted as a single JSON document. The document is
	// re-read before every operation and atomically replaced after every
	// write. Writers hold an exclusive flock on <path>.lock for the whole
	// read-modify-write, so several ctiview processes can share one file.
	File struct {
		mu   sync.Mutex
		path string
		lock *flock.Flock
	}

	// fileRecord is one key of the on disk document, the slice order is the
	// key insertion order
	fileRecord struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
)

// NewFile opens (or prepares to create) the store at path
func NewFile(path string) (*File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create storage directory %s: %v", dir, err)
	}
	f := &File{path: path, lock: flock.New(path + ".lock")}

	// surface a corrupt document now rather than on the first lookup
	if _, err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the location of the backing document
func (f *File) Path() string {
	return f.path
}

func (f *File) load() ([]fileRecord, error) {
	contents, err := ioutil.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return nil, nil
	}

	var records []fileRecord
	if err := json.Unmarshal(contents, &records); err != nil {
		return nil, fmt.Errorf("corrupt storage file %s: %v", f.path, err)
	}
	return records, nil
}

func (f *File) save(records []fileRecord) error {
	contents, err := json.Marshal(records)
	if err != nil {
		return err
	}

	tmp, err := ioutil.TempFile(filepath.Dir(f.path), ".storage-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(contents); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, f.path)
}

// locked runs fn while holding the in-process mutex and the file lock,
// shared for readers and exclusive for writers
func (f *File) locked(exclusive bool, fn func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var err error
	if exclusive {
		err = f.lock.Lock()
	} else {
		err = f.lock.RLock()
	}
	if err != nil {
		return fmt.Errorf("could not lock storage file %s: %v", f.path, err)
	}
	defer f.lock.Unlock()

	return fn()
}

// Get returns the value stored at key
func (f *File) Get(key string) ([]byte, bool, error) {
	var value []byte
	var found bool
	err := f.locked(false, func() error {
		var err error
		value, found, err = f.get(key)
		return err
	})
	return value, found, err
}

func (f *File) get(key string) ([]byte, bool, error) {
	records, err := f.load()
	if err != nil {
		return nil, false, err
	}
	for _, record := range records {
		if record.Key == key {
			return []byte(record.Value), true, nil
		}
	}
	return nil, false, nil
}

// Set replaces the value stored at key
func (f *File) Set(key string, value []byte) error {
	return f.locked(true, func() error {
		return f.set(key, value)
	})
}

func (f *File) set(key string, value []byte) error {
	records, err := f.load()
	if err != nil {
		return err
	}

	found := false
	for i := range records {
		if records[i].Key == key {
			records[i].Value = string(value)
			found = true
			break
		}
	}
	if !found {
		records = append(records, fileRecord{Key: key, Value: string(value)})
	}
	return f.save(records)
}

// Remove deletes key if present
func (f *File) Remove(key string) error {
	return f.locked(true, func() error {
		return f.remove(key)
	})
}

func (f *File) remove(key string) error {
	records, err := f.load()
	if err != nil {
		return err
	}

	for i := range records {
		if records[i].Key == key {
			records = append(records[:i], records[i+1:]...)
			return f.save(records)
		}
	}
	return nil
}

// Keys lists the stored keys in insertion order
func (f *File) Keys() ([]string, error) {
	var keys []string
	err := f.locked(false, func() error {
		records, err := f.load()
		if err != nil {
			return err
		}
		keys = make([]string, 0, len(records))
		for _, record := range records {
			keys = append(keys, record.Key)
		}
		return nil
	})
	return keys, err
}
