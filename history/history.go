// Package history keeps the per-IP lookup history and the user settings on
// top of a storage.KeyValue. Each IP owns the key history_<ip>, which holds a
// JSON array of entries, newest first.
package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/activecm/ctiview/storage"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// KeyPrefix is prepended to an IP to form its storage key
const KeyPrefix = "history_"

// DefaultMaxEntries is the number of entries kept per IP
const DefaultMaxEntries = 10

// TimestampFormat matches the ISO-8601 form browsers produce
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

type (
	// Entry is the score snapshot saved after a successful lookup
	Entry struct {
		Timestamp   string  `json:"timestamp"`
		ThreatScore float64 `json:"threat_score"`
	}

	// Record is the full history of one IP
	Record struct {
		IP      string  `json:"ip"`
		Entries []Entry `json:"entries"`
	}

	// StorageError is returned when the backing storage fails
	StorageError struct {
		Op  string
		Key string
		Err error
	}

	// Store is the local history store. It is safe for concurrent use as
	// long as the backing storage is.
	Store struct {
		kv         storage.KeyValue
		log        *log.Logger
		maxEntries int
	}
)

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewEntry builds an entry for a lookup finished at the given time
func NewEntry(at time.Time, score float64) Entry {
	return Entry{
		Timestamp:   at.UTC().Format(TimestampFormat),
		ThreatScore: score,
	}
}

// Time parses the entry timestamp
func (e Entry) Time() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, e.Timestamp)
}

// NewStore creates a history store keeping at most maxEntries per IP. A non
// positive maxEntries selects DefaultMaxEntries.
func NewStore(kv storage.KeyValue, logger *log.Logger, maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		kv:         kv,
		log:        logger,
		maxEntries: maxEntries,
	}
}

// MaxEntries is the per IP history cap
func (s *Store) MaxEntries() int {
	return s.maxEntries
}

// RecordLookup prepends entry to the history of ip and truncates it to the
// newest MaxEntries entries. Storage failures are logged and swallowed so
// they never interrupt the lookup that produced the entry.
func (s *Store) RecordLookup(ip string, entry Entry) {
	if err := s.recordLookup(ip, entry); err != nil {
		s.log.WithFields(log.Fields{
			"error": err.Error(),
			"ip":    ip,
		}).Warn("Could not save lookup history")
	}
}

func (s *Store) recordLookup(ip string, entry Entry) error {
	key := KeyPrefix + ip

	existing, err := s.read(key)
	if err != nil {
		return err
	}

	entries := make([]Entry, 0, len(existing)+1)
	entries = append(entries, entry)
	entries = append(entries, existing...)
	if len(entries) > s.maxEntries {
		entries = entries[:s.maxEntries]
	}

	encoded, err := json.Marshal(entries)
	if err != nil {
		return &StorageError{Op: "encode", Key: key, Err: err}
	}
	if err := s.kv.Set(key, encoded); err != nil {
		return &StorageError{Op: "write", Key: key, Err: err}
	}

	s.log.WithFields(log.Fields{
		"ip":      ip,
		"score":   entry.ThreatScore,
		"entries": len(entries),
	}).Debug("Recorded lookup")
	return nil
}

// read loads the entries stored at key. Values that do not decode are
// logged and treated as an empty history.
func (s *Store) read(key string) ([]Entry, error) {
	value, ok, err := s.kv.Get(key)
	if err != nil {
		return nil, &StorageError{Op: "read", Key: key, Err: err}
	}
	if !ok {
		return []Entry{}, nil
	}

	var entries []Entry
	if err := json.Unmarshal(value, &entries); err != nil {
		s.log.WithFields(log.Fields{
			"error": err.Error(),
			"key":   key,
		}).Warn("Discarding unreadable history")
		return []Entry{}, nil
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// GetHistory returns the entries for ip, newest first. An IP without history
// yields an empty slice.
func (s *Store) GetHistory(ip string) ([]Entry, error) {
	return s.read(KeyPrefix + ip)
}

// ClearHistory removes every entry for ip. Clearing an unknown IP is a no-op.
func (s *Store) ClearHistory(ip string) error {
	key := KeyPrefix + ip
	if err := s.kv.Remove(key); err != nil {
		return &StorageError{Op: "remove", Key: key, Err: err}
	}
	s.log.WithFields(log.Fields{
		"ip": ip,
	}).Info("Cleared lookup history")
	return nil
}

// ListRecentIPs returns up to limit IPs that have a history. Backends that
// remember insertion order yield the most recently created histories first,
// otherwise the order is whatever the backend lists. No timestamps are
// consulted. A non positive limit returns every IP.
func (s *Store) ListRecentIPs(limit int) ([]string, error) {
	keys, err := s.kv.Keys()
	if err != nil {
		return nil, &StorageError{Op: "list", Key: KeyPrefix + "*", Err: err}
	}

	ips := []string{}
	for i := len(keys) - 1; i >= 0; i-- {
		if !strings.HasPrefix(keys[i], KeyPrefix) {
			continue
		}
		ips = append(ips, strings.TrimPrefix(keys[i], KeyPrefix))
		if limit > 0 && len(ips) == limit {
			break
		}
	}
	return ips, nil
}

// Records joins ListRecentIPs with each IP's entries
func (s *Store) Records(limit int) ([]Record, error) {
	ips, err := s.ListRecentIPs(limit)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(ips))
	for _, ip := range ips {
		entries, err := s.GetHistory(ip)
		if err != nil {
			return nil, err
		}
		records = append(records, Record{IP: ip, Entries: entries})
	}
	return records, nil
}
