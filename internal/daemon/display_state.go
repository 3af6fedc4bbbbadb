package daemon

import (
	"sync"
	"time"

	"github.com/jmylchreest/cliv/internal/toast"
)

// DisplayState maps a D-Bus notification ID to the toast showing it.
type DisplayState struct {
	ToastID   toast.ID
	DBusID    uint32
	CreatedAt time.Time
}

// DisplayStateManager tracks which toast shows which D-Bus notification.
type DisplayStateManager struct {
	mu sync.RWMutex

	byToastID map[toast.ID]*DisplayState

	// Reverse lookup
	byDBusID map[uint32]toast.ID
}

// NewDisplayStateManager creates a new DisplayStateManager.
func NewDisplayStateManager() *DisplayStateManager {
	return &DisplayStateManager{
		byToastID: make(map[toast.ID]*DisplayState),
		byDBusID:  make(map[uint32]toast.ID),
	}
}

// Register records that toastID shows notification dbusID.
// A D-Bus ID already mapped to another toast is re-pointed.
func (m *DisplayStateManager) Register(toastID toast.ID, dbusID uint32) *DisplayState {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, exists := m.byDBusID[dbusID]; exists {
		delete(m.byToastID, old)
	}

	state := &DisplayState{
		ToastID:   toastID,
		DBusID:    dbusID,
		CreatedAt: time.Now(),
	}

	m.byToastID[toastID] = state
	m.byDBusID[dbusID] = toastID
	return state
}

// GetByDBusID returns a copy of the state for a D-Bus ID.
func (m *DisplayStateManager) GetByDBusID(dbusID uint32) (DisplayState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	toastID, exists := m.byDBusID[dbusID]
	if !exists {
		return DisplayState{}, false
	}
	return *m.byToastID[toastID], true
}

// GetDBusIDByToastID returns the D-Bus ID for a toast.
func (m *DisplayStateManager) GetDBusIDByToastID(toastID toast.ID) (uint32, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, exists := m.byToastID[toastID]
	if !exists {
		return 0, false
	}
	return state.DBusID, true
}

// Remove removes a state entry by toast ID.
func (m *DisplayStateManager) Remove(toastID toast.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, exists := m.byToastID[toastID]
	if !exists {
		return
	}

	delete(m.byDBusID, state.DBusID)
	delete(m.byToastID, toastID)
}

// RemoveByDBusID removes a state entry by D-Bus ID and returns the toast it mapped to.
func (m *DisplayStateManager) RemoveByDBusID(dbusID uint32) (toast.ID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	toastID, exists := m.byDBusID[dbusID]
	if !exists {
		return "", false
	}

	delete(m.byDBusID, dbusID)
	delete(m.byToastID, toastID)
	return toastID, true
}

// Count returns the number of tracked notifications.
func (m *DisplayStateManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byToastID)
}
