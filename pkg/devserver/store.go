package devserver

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/facegate/go-facegate/pkg/capture"
)

// challengeTTL is how long an issued challenge stays redeemable.
const challengeTTL = 2 * time.Minute

// User is an enrolled identity with its pose crops.
type User struct {
	ID       string
	Email    string
	Phone    *string
	Images   map[string]string
	Enrolled time.Time
}

// Challenge is an open verification challenge.
type Challenge struct {
	ID       string
	UserID   string
	Sequence []capture.Pose
	Purpose  string
	Issued   time.Time
}

// Store keeps users and challenges in memory. Good enough for a dev
// backend; nothing survives a restart.
type Store struct {
	mu         sync.RWMutex
	users      map[string]*User
	byEmail    map[string]string
	challenges map[string]*Challenge
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]*User),
		byEmail:    make(map[string]string),
		challenges: make(map[string]*Challenge),
	}
}

// CreateUser enrolls a user and returns its generated id.
func (s *Store) CreateUser(email string, phone *string, images map[string]string) *User {
	u := &User{
		ID:       uuid.NewString(),
		Email:    email,
		Phone:    phone,
		Images:   images,
		Enrolled: time.Now(),
	}

	s.mu.Lock()
	s.users[u.ID] = u
	if email != "" {
		s.byEmail[email] = u.ID
	}
	s.mu.Unlock()
	return u
}

// User looks up an enrolled user by id, falling back to email.
func (s *Store) User(id, email string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.users[id]; ok {
		return u, true
	}
	if uid, ok := s.byEmail[email]; ok {
		return s.users[uid], true
	}
	return nil, false
}

// CreateChallenge opens a challenge for a user.
func (s *Store) CreateChallenge(userID string, sequence []capture.Pose, purpose string) *Challenge {
	ch := &Challenge{
		ID:       uuid.New().String(),
		UserID:   userID,
		Sequence: sequence,
		Purpose:  purpose,
		Issued:   time.Now(),
	}

	s.mu.Lock()
	s.challenges[ch.ID] = ch
	s.mu.Unlock()
	return ch
}

// TakeChallenge redeems a challenge. Each challenge is single-use and
// expires after challengeTTL.
func (s *Store) TakeChallenge(id string) (*Challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[id]
	if !ok {
		return nil, false
	}
	delete(s.challenges, id)

	if time.Since(ch.Issued) > challengeTTL {
		return nil, false
	}
	return ch, true
}
