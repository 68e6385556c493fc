package reminder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	log "log/slog"
)

// SetAtLayout is the creation timestamp format stored in the backing file.
const SetAtLayout = "2006-01-02 15:04:05"

// Reminder is one remembered task. SetAt stays a string so the file format
// round-trips exactly.
type Reminder struct {
	Text  string `json:"text"`
	SetAt string `json:"set_at"`
}

// Store owns the reminder list and its backing file. Appends are
// write-through: the in-memory list is extended first, then the whole file is
// rewritten, so the on-disk list never trails by more than the append in
// flight. The mutex serializes concurrent dispatches against the
// read-modify-persist sequence.
type Store struct {
	path string
	now  func() time.Time

	mu    sync.Mutex
	items []Reminder
}

// Open loads the store from path. A missing, empty, or malformed file yields
// an empty store; loading never fails the process.
func Open(path string) *Store {
	s := &Store{path: path, now: time.Now}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info("Reminder file not found, starting empty", "path", s.path)
		} else {
			log.Warn("Failed to read reminder file, starting empty", "path", s.path, "err", err)
		}
		return
	}

	if len(bytes.TrimSpace(data)) == 0 {
		log.Info("Reminder file is empty, starting empty", "path", s.path)
		return
	}

	var items []Reminder
	if err := json.Unmarshal(data, &items); err != nil {
		log.Warn("Could not decode reminder file, starting empty", "path", s.path, "err", err)
		return
	}

	s.items = items
	log.Info("Loaded reminders", "count", len(items), "path", s.path)
}

// Append records a new reminder and persists the full list. A persistence
// failure is logged and swallowed; the in-memory list stays authoritative for
// the session.
func (s *Store) Append(text string) Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := Reminder{Text: text, SetAt: s.now().Format(SetAtLayout)}
	s.items = append(s.items, r)

	if err := s.persist(); err != nil {
		log.Error("Failed to save reminders", "path", s.path, "err", err)
	}

	log.Info("Reminder added", "task", text, "total", len(s.items))
	return r
}

func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.items, "", "    ")
	if err != nil {
		return fmt.Errorf("encode reminders: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Len reports the number of stored reminders.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// All returns a copy of the stored reminders in insertion order.
func (s *Store) All() []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Reminder(nil), s.items...)
}

// RenderAll enumerates the stored reminders for the user, 1-based.
func (s *Store) RenderAll() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return "You have no reminders set right now."
	}

	plural := ""
	if len(s.items) > 1 {
		plural = "s"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Okay, you have %d reminder%s: ", len(s.items), plural)
	for i, r := range s.items {
		fmt.Fprintf(&b, "Number %d. %s (set at %s). ", i+1, r.Text, r.SetAt)
	}
	return strings.TrimSpace(b.String())
}
