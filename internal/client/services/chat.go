package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/IndraPur1/ChatApp/internal/client/client"
	"github.com/IndraPur1/ChatApp/internal/client/models"
	"github.com/IndraPur1/ChatApp/internal/client/repositories/history"
	"github.com/IndraPur1/ChatApp/internal/common"
	"github.com/IndraPur1/ChatApp/internal/logging"
)

// orderKey is the field the remote collection is ordered by.
const orderKey = "createdAt"

// StreamState tracks the reconciler's subscription lifecycle.
type StreamState int

const (
	StateUnsubscribed StreamState = iota
	StateSubscribing
	StateSynced
)

func (s StreamState) String() string {
	switch s {
	case StateSubscribing:
		return "subscribing"
	case StateSynced:
		return "synced"
	default:
		return "unsubscribed"
	}
}

// SnapshotFunc receives each reconciled snapshot for rendering.
type SnapshotFunc func(msgs []models.Message)

// Subscription detaches the live message subscription when disposed.
// Dispose is idempotent; no snapshot callbacks fire after it returns
// alongside the worker having drained.
type Subscription struct {
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

// Dispose detaches the remote listener and waits for the worker to stop.
func (s *Subscription) Dispose() {
	s.once.Do(s.cancel)
	<-s.done
}

// ChatService reconciles the remote ordered message collection with the
// in-memory log and the local history mirror, and appends outgoing messages.
type ChatService interface {
	// CachedHistory returns the persisted log for instant first paint.
	// Storage faults degrade to an empty log.
	CachedHistory(ctx context.Context) []models.Message

	// Subscribe starts the live subscription. Each incoming snapshot fully
	// replaces the in-memory log and the history mirror before onSnapshot
	// is invoked; snapshots are processed strictly in delivery order.
	Subscribe(ctx context.Context, onSnapshot SnapshotFunc) (*Subscription, error)

	// SendText appends a text message. Empty or whitespace-only text is a
	// no-op. The message shows up only with the next snapshot.
	SendText(ctx context.Context, author, text string) error

	// SendImage appends an image message as an inline base64 data URI.
	SendImage(ctx context.Context, author, mime string, data []byte) error

	// Messages returns a copy of the current in-memory log.
	Messages() []models.Message

	// State reports the subscription lifecycle state.
	State() StreamState
}

type chatService struct {
	store client.MessageStore
	cache history.Repository
	log   logging.Logger

	mu       sync.Mutex
	messages []models.Message
	state    StreamState
}

func NewChatService(store client.MessageStore, cache history.Repository, log logging.Logger) ChatService {
	return &chatService{store: store, cache: cache, log: log}
}

func (s *chatService) CachedHistory(ctx context.Context) []models.Message {
	msgs, err := s.cache.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "history cache load failed", "error", err)
		return nil
	}
	return msgs
}

func (s *chatService) Subscribe(ctx context.Context, onSnapshot SnapshotFunc) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	s.setState(StateSubscribing)

	snapshots, err := s.store.Subscribe(subCtx, orderKey)
	if err != nil {
		cancel()
		s.setState(StateUnsubscribed)
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	sub := &Subscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		defer s.setState(StateUnsubscribed)

		for snapshot := range snapshots {
			s.applySnapshot(subCtx, snapshot, onSnapshot)
		}
	}()

	return sub, nil
}

// applySnapshot runs the transform-persist-notify sequence for one snapshot.
// The worker goroutine calls it sequentially, so two snapshots never
// interleave.
func (s *chatService) applySnapshot(ctx context.Context, snapshot []models.Message, onSnapshot SnapshotFunc) {
	for i := range snapshot {
		snapshot[i].Normalize()
	}
	models.SortByCreatedAt(snapshot)

	s.mu.Lock()
	s.messages = snapshot
	s.state = StateSynced
	s.mu.Unlock()

	// The remote store stays the source of truth even when the mirror
	// cannot keep up.
	if err := s.cache.Replace(ctx, snapshot); err != nil {
		s.log.Warn(ctx, "history cache write failed", "error", err)
	}

	if onSnapshot != nil {
		out := make([]models.Message, len(snapshot))
		copy(out, snapshot)
		onSnapshot(out)
	}
}

func (s *chatService) SendText(ctx context.Context, author, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	msg := models.Message{
		Author: author,
		Kind:   models.KindText,
		Body:   trimmed,
	}
	if err := s.store.Append(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", common.ErrSend, err)
	}
	return nil
}

func (s *chatService) SendImage(ctx context.Context, author, mime string, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if mime == "" {
		mime = "image/jpeg"
	}

	msg := models.Message{
		Author:    author,
		Kind:      models.KindImage,
		ImageData: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
	}
	if err := s.store.Append(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", common.ErrSend, err)
	}
	return nil
}

func (s *chatService) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *chatService) State() StreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *chatService) setState(state StreamState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
