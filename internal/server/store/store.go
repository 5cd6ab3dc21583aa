// Package store is the reference server's in-memory state: accounts,
// profiles and the single ordered message collection with live-query fanout.
// It mimics the semantics of a hosted document store: every append pushes the
// complete ordered result set to every subscriber.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/IndraPur1/ChatApp/internal/common"
)

type User struct {
	ID           string
	Email        string
	PasswordHash []byte
}

type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Message struct {
	ID        string    `json:"id"`
	Author    string    `json:"user"`
	Kind      string    `json:"type"`
	Body      string    `json:"text,omitempty"`
	ImageData string    `json:"imageBase64,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// subscriberBuffer bounds how many snapshots a slow subscriber may lag
// behind; older snapshots are discarded since each one supersedes the last.
const subscriberBuffer = 16

type Store struct {
	mu           sync.RWMutex
	usersByEmail map[string]*User
	usersByID    map[string]*User
	profiles     map[string]Profile
	messages     []Message

	subMu  sync.Mutex
	subs   map[int]chan []Message
	nextID int
}

func New() *Store {
	return &Store{
		usersByEmail: make(map[string]*User),
		usersByID:    make(map[string]*User),
		profiles:     make(map[string]Profile),
		subs:         make(map[int]chan []Message),
	}
}

// CreateUser registers a new account. Returns common.ErrEmailTaken when the
// email is already in use.
func (s *Store) CreateUser(email string, passwordHash []byte) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usersByEmail[email]; ok {
		return nil, common.ErrEmailTaken
	}

	user := &User{ID: uuid.NewString(), Email: email, PasswordHash: passwordHash}
	s.usersByEmail[email] = user
	s.usersByID[user.ID] = user
	return user, nil
}

func (s *Store) UserByEmail(email string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByEmail[email]
	return u, ok
}

func (s *Store) PutProfile(userID string, profile Profile) {
	s.mu.Lock()
	s.profiles[userID] = profile
	s.mu.Unlock()
}

func (s *Store) GetProfile(userID string) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	return p, ok
}

// AppendMessage assigns id and server timestamp, appends the record and
// fans the new complete snapshot out to every subscriber.
func (s *Store) AppendMessage(msg Message) Message {
	s.mu.Lock()
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now().UTC()
	s.messages = append(s.messages, msg)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.broadcast(snapshot)
	return msg
}

// Snapshot returns the full ordered message list.
func (s *Store) Snapshot() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// SubscribeMessages registers a live-query subscriber. The current snapshot
// is delivered first, then one snapshot per append. The channel is closed
// when ctx is cancelled.
func (s *Store) SubscribeMessages(ctx context.Context) <-chan []Message {
	ch := make(chan []Message, subscriberBuffer)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	s.deliver(ch, s.Snapshot())

	go func() {
		<-ctx.Done()
		s.subMu.Lock()
		delete(s.subs, id)
		close(ch)
		s.subMu.Unlock()
	}()

	return ch
}

func (s *Store) broadcast(snapshot []Message) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		s.deliver(ch, snapshot)
	}
}

// deliver never blocks: when the subscriber's buffer is full the oldest
// pending snapshot is dropped, since the newest one supersedes it anyway.
func (s *Store) deliver(ch chan []Message, snapshot []Message) {
	for {
		select {
		case ch <- snapshot:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
