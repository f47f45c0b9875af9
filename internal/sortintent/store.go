package sortintent

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/gofrs/flock"
	"github.com/gorilla/schema"
	"github.com/kalpovskii/taskboard/internal/app/models"
	"gopkg.in/yaml.v3"
)

var (
	encoder = schema.NewEncoder()
	decoder = schema.NewDecoder()
)

func init() {
	decoder.IgnoreUnknownKeys(true)
	decoder.RegisterConverter(models.SortField(""), func(s string) reflect.Value {
		return reflect.ValueOf(models.SortField(s))
	})
	decoder.RegisterConverter(models.SortOrder(""), func(s string) reflect.Value {
		return reflect.ValueOf(models.SortOrder(s))
	})
}

// Store persists the intent in a navigable location.
type Store interface {
	Read() (Intent, error)
	Write(Intent) error
}

func decodeQuery(q url.Values) (Intent, error) {
	var i Intent
	if err := decoder.Decode(&i, q); err != nil {
		return Intent{}, fmt.Errorf("decode sort intent: %w", err)
	}
	return normalize(i), nil
}

// QueryStore keeps the intent in a set of query parameters. Parameters other
// than sortBy and sortOrder are left untouched.
type QueryStore struct {
	Values url.Values
}

func NewQueryStore(values url.Values) *QueryStore {
	if values == nil {
		values = url.Values{}
	}
	return &QueryStore{Values: values}
}

func (s *QueryStore) Read() (Intent, error) {
	return decodeQuery(s.Values)
}

func (s *QueryStore) Write(i Intent) error {
	s.Values.Del(paramSortBy)
	s.Values.Del(paramSortOrder)
	for k, vs := range i.Query() {
		s.Values[k] = vs
	}
	return nil
}

const (
	lockTimeout  = 3 * time.Second
	lockInterval = 100 * time.Millisecond
)

type stateFile struct {
	Query string `yaml:"query"`
}

// FileStore keeps the intent as an encoded query string in a YAML file, so it
// survives between invocations of the client. Access is serialized across
// processes with a lock file next to it.
type FileStore struct {
	path string
	lock *flock.Flock
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, lock: flock.New(path + ".lock")}
}

func (s *FileStore) Read() (Intent, error) {
	var intent Intent
	err := s.locked(func() (err error) {
		intent, err = s.read()
		return err
	})
	return intent, err
}

func (s *FileStore) Write(i Intent) error {
	return s.locked(func() error {
		return s.write(i)
	})
}

// Update applies fn to the stored intent and writes the result, holding the
// lock for the whole step so concurrent clients cannot lose a change.
func (s *FileStore) Update(fn func(Intent) Intent) (Intent, error) {
	var next Intent
	err := s.locked(func() error {
		current, err := s.read()
		if err != nil {
			return err
		}
		next = fn(current)
		return s.write(next)
	})
	if err != nil {
		return Intent{}, err
	}
	return next, nil
}

func (s *FileStore) read() (Intent, error) {
	state, err := s.load()
	if err != nil {
		return Intent{}, err
	}
	q, err := url.ParseQuery(state.Query)
	if err != nil {
		// An unreadable location means no intent.
		return Intent{}, nil
	}
	return decodeQuery(q)
}

func (s *FileStore) write(i Intent) error {
	data, err := yaml.Marshal(stateFile{Query: i.Query().Encode()})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

func (s *FileStore) load() (stateFile, error) {
	var state stateFile
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("read state file: %w", err)
	}
	if err := yaml.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("parse state file %s: %w", s.path, err)
	}
	return state, nil
}

func (s *FileStore) locked(fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	ok, err := s.lock.TryLockContext(ctx, lockInterval)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("could not acquire lock on %s", s.path)
	}
	defer func() { _ = s.lock.Unlock() }()

	return fn()
}

// Updater is implemented by stores that can read, change and write the
// intent as one step.
type Updater interface {
	Update(fn func(Intent) Intent) (Intent, error)
}

// Toggler applies toggles to a Store.
type Toggler struct {
	store Store
}

func NewToggler(store Store) *Toggler {
	return &Toggler{store: store}
}

func (t *Toggler) Current() (Intent, error) {
	return t.store.Read()
}

// Toggle reads the stored intent, advances it for field and writes it back.
func (t *Toggler) Toggle(field string) (Intent, error) {
	f := models.SortField(field)
	if !f.Valid() {
		return Intent{}, fmt.Errorf("unknown sort field %q", field)
	}
	if u, ok := t.store.(Updater); ok {
		return u.Update(func(current Intent) Intent {
			return Toggle(current, f)
		})
	}

	current, err := t.store.Read()
	if err != nil {
		return Intent{}, err
	}
	next := Toggle(current, f)
	if err := t.store.Write(next); err != nil {
		return Intent{}, err
	}
	return next, nil
}

func (t *Toggler) Clear() error {
	return t.store.Write(Intent{})
}
