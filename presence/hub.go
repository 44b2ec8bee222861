package presence

import (
	"context"
	"sync"
	"time"

	Logger "github.com/Luismorlan/rambagiza/utils/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const noticeBufferSize = 16

var ErrNoActiveConnection = errors.New("no active connection for user")

// Notice is a live message pushed to a user's open pages.
type Notice struct {
	Type string    `json:"type"`
	Text string    `json:"text"`
	Link string    `json:"link,omitempty"`
	At   time.Time `json:"at"`
}

// OnlineSetter persists the online flag of a user.
type OnlineSetter interface {
	SetOnline(ctx context.Context, id string, online bool) error
}

// Hub tracks every live socket per user. A user is online while they have at
// least one connection.
type Hub struct {
	// connectionMap maps from user id to the user's live connections, keyed by
	// connection id so removal is O(1). The user entry is deleted together with
	// its last connection.
	connectionMap map[string]map[string]chan *Notice

	// Adding/removing a connection grabs the write lock, pushing grabs the
	// read lock.
	mu sync.RWMutex

	// flagMu serializes writes of the persisted flag. Each write stores the
	// state of connectionMap at write time, so a slow offline write can not
	// land after the online write of a newer connection. Lock order is
	// flagMu then mu.
	flagMu sync.Mutex
	// persisted holds the users last stored as online.
	persisted map[string]bool

	online OnlineSetter
}

func NewHub(online OnlineSetter) *Hub {
	return &Hub{
		connectionMap: make(map[string]map[string]chan *Notice),
		persisted:     make(map[string]bool),
		online:        online,
	}
}

// syncOnline stores whether the user currently has a live connection.
func (h *Hub) syncOnline(userID string) {
	if h.online == nil {
		return
	}
	h.flagMu.Lock()
	defer h.flagMu.Unlock()

	online := h.IsOnline(userID)
	if h.persisted[userID] == online {
		return
	}
	if err := h.online.SetOnline(context.Background(), userID, online); err != nil {
		Logger.Log.Errorf("fail to set user %s online=%t: %s", userID, online, err)
	}
	if online {
		h.persisted[userID] = true
	} else {
		delete(h.persisted, userID)
	}
}

// cleanUp a single connection when the context terminates. The user goes
// offline with their last connection.
func (h *Hub) cleanUp(ctx context.Context, connID string, userID string) {
	<-ctx.Done()

	h.mu.Lock()
	delete(h.connectionMap[userID], connID)
	last := len(h.connectionMap[userID]) == 0
	if last {
		delete(h.connectionMap, userID)
	}
	h.mu.Unlock()

	if last {
		h.syncOnline(userID)
	}
}

// AddNewConnection registers a connection living as long as ctx. Thread-safe.
func (h *Hub) AddNewConnection(ctx context.Context, userID string) (chan *Notice, string) {
	connID := "presence_" + uuid.New().String()
	ch := make(chan *Notice, noticeBufferSize)

	h.mu.Lock()
	_, existed := h.connectionMap[userID]
	if !existed {
		h.connectionMap[userID] = make(map[string]chan *Notice)
	}
	h.connectionMap[userID][connID] = ch
	h.mu.Unlock()

	if !existed {
		h.syncOnline(userID)
	}
	go h.cleanUp(ctx, connID, userID)

	return ch, connID
}

// Thread-safe
func (h *Hub) GetActiveConnectionsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, conns := range h.connectionMap {
		count += len(conns)
	}
	return count
}

// Thread-safe
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connectionMap[userID]
	return ok
}

// PushToUser fans a notice out to all of the user's connections. A connection
// whose buffer is full misses the notice. Thread-safe.
func (h *Hub) PushToUser(userID string, notice *Notice) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.connectionMap[userID]
	if !ok {
		return ErrNoActiveConnection
	}
	if notice.At.IsZero() {
		notice.At = time.Now().UTC()
	}
	for connID, ch := range conns {
		select {
		case ch <- notice:
		default:
			Logger.Log.Warnf("dropping notice for slow connection %s", connID)
		}
	}
	return nil
}
