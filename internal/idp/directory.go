package idp

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/rryowa/campus_session/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)

//nolint:gochecknoglobals // fixed cost hash for unknown users
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("unknown-user"), bcrypt.MinCost)

// Record is everything the directory knows about one student.
type Record struct {
	Username     string
	PasswordHash []byte
	Profile      models.Profile
	Courses      []models.Course
	Grades       []models.Grade
	Attendance   []models.Attendance
	Messages     []models.Message
}

// Directory is the in-memory stand-in for the upstream LDAP directory.
type Directory struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewDirectory() *Directory {
	return &Directory{records: make(map[string]Record)}
}

// Add stores r, hashing password with bcrypt.
func (d *Directory) Add(r Record, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	r.PasswordHash = hash

	d.mu.Lock()
	d.records[r.Username] = r
	d.mu.Unlock()
	return nil
}

func (d *Directory) Authenticate(username, password string) error {
	d.mu.RLock()
	r, ok := d.records[username]
	d.mu.RUnlock()

	if !ok {
		// Burn comparable time for unknown users.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(r.PasswordHash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (d *Directory) Lookup(username string) (Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.records[username]
	if !ok {
		return Record{}, ErrUserNotFound
	}
	return r, nil
}
