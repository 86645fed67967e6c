// Package docservice owns the current snapshot of every open document. It
// routes keystrokes and commands through the autoformat engine, falls back
// to default editing, and loads and saves documents through the codec and
// a storage backend.
package docservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/starford/scribe/internal/apperr"
	"github.com/starford/scribe/internal/autoformat"
	"github.com/starford/scribe/internal/checksum"
	"github.com/starford/scribe/internal/codec"
	"github.com/starford/scribe/internal/document"
	"github.com/starford/scribe/internal/storage"
)

// Event kinds passed to a Publisher.
const (
	EventUpdated  = "updated"
	EventSaved    = "saved"
	EventDeleted  = "deleted"
	EventReloaded = "reloaded"
)

// Publisher receives document change notifications.
type Publisher interface {
	PublishDocumentEvent(kind, id, checksum string)
}

// View is the externally visible state of one document.
type View struct {
	ID            string          `json:"id"`
	Record        codec.RawRecord `json:"record"`
	Selection     SelectionView   `json:"selection"`
	PendingStyles []string        `json:"pendingStyles,omitempty"`
	Checksum      string          `json:"checksum"`
	Dirty         bool            `json:"dirty"`
}

// SelectionView is the wire form of a selection.
type SelectionView struct {
	AnchorKey    string `json:"anchorKey"`
	AnchorOffset int    `json:"anchorOffset"`
	FocusKey     string `json:"focusKey"`
	FocusOffset  int    `json:"focusOffset"`
	IsBackward   bool   `json:"isBackward"`
}

// Selection converts the view back to a document selection.
func (v SelectionView) Selection() document.Selection {
	return document.Selection{
		AnchorKey:    v.AnchorKey,
		AnchorOffset: v.AnchorOffset,
		FocusKey:     v.FocusKey,
		FocusOffset:  v.FocusOffset,
		IsBackward:   v.IsBackward,
	}
}

// ListItem is a lightweight entry in a document listing.
type ListItem struct {
	ID        string    `json:"id"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
	Open      bool      `json:"open"`
	Dirty     bool      `json:"dirty"`
}

type session struct {
	snap document.Snapshot
	// stored is the checksum of the bytes last read from or written to the
	// store, empty when nothing is stored yet.
	stored string
	dirty  bool
}

// Service holds one session per open document. A single mutex serialises
// all writers.
type Service struct {
	store  storage.Store
	engine *autoformat.Engine
	format codec.Format
	events Publisher
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the receiver of change notifications.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger overrides slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithFormat selects the codec format used for storage. JSON by default.
func WithFormat(f codec.Format) Option {
	return func(s *Service) { s.format = f }
}

// NewService creates a document service.
func NewService(store storage.Store, engine *autoformat.Engine, opts ...Option) *Service {
	s := &Service{
		store:    store,
		engine:   engine,
		format:   codec.FormatJSON,
		logger:   slog.Default(),
		sessions: make(map[string]*session),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Engine returns the autoformat engine the service routes input through.
func (s *Service) Engine() *autoformat.Engine { return s.engine }

func (s *Service) publish(kind, id, sum string) {
	if s.events != nil {
		s.events.PublishDocumentEvent(kind, id, sum)
	}
}

func validID(id string) error {
	if err := storage.ValidateKey(id); err != nil {
		return fmt.Errorf("docservice: %w %q", apperr.ErrInvalidID, id)
	}
	return nil
}

// sessionLocked returns the cached session for id, loading it on first use.
// s.mu must be held.
func (s *Service) sessionLocked(ctx context.Context, id string) (*session, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.sessions[id] = sess
	return sess, nil
}

// load reads id from the store. A missing or malformed record yields an
// empty document.
func (s *Service) load(ctx context.Context, id string) (*session, error) {
	data, err := s.store.Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return &session{snap: document.CreateEmpty()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("docservice: load %s: %w", id, err)
	}
	sum := checksum.Sum(data)
	doc, err := codec.Unmarshal(data, s.format)
	if codec.IsDeserializationError(err) {
		s.logger.Warn("docservice: stored document is malformed, starting empty",
			slog.String("id", id),
			slog.String("error", err.Error()))
		return &session{snap: document.CreateEmpty(), stored: sum}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("docservice: load %s: %w", id, err)
	}
	return &session{snap: document.CreateWithDocument(doc), stored: sum}, nil
}

// Open returns the current snapshot of id.
func (s *Service) Open(ctx context.Context, id string) (document.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.sessionLocked(ctx, id)
	if err != nil {
		return document.Snapshot{}, err
	}
	return sess.snap, nil
}

// View returns the externally visible state of id.
func (s *Service) View(ctx context.Context, id string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.sessionLocked(ctx, id)
	if err != nil {
		return View{}, err
	}
	return buildView(id, sess), nil
}

// Input offers chars to the engine one code point at a time, as if typed.
// Characters the engine does not claim are inserted at the caret. The
// returned flag reports whether any character was claimed by a trigger.
func (s *Service) Input(ctx context.Context, id, chars string) (View, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.sessionLocked(ctx, id)
	if err != nil {
		return View{}, false, err
	}

	snap := sess.snap
	claimed := false
	for _, r := range chars {
		ch := string(r)
		if d := s.engine.HandleBeforeInput(ch, snap); d.IsHandled() {
			snap = d.Snapshot
			claimed = true
			continue
		}
		if snap, err = document.InsertText(snap, ch); err != nil {
			return View{}, false, fmt.Errorf("docservice: input %s: %w", id, err)
		}
	}
	s.commitLocked(id, sess, snap)
	return buildView(id, sess), claimed, nil
}

// Command applies a named key command. The engine gets the first chance;
// backspace, delete and split-block variants fall back to default editing.
func (s *Service) Command(ctx context.Context, id, command string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.sessionLocked(ctx, id)
	if err != nil {
		return View{}, err
	}

	next := sess.snap
	if d := s.engine.HandleKeyCommand(command, sess.snap); d.IsHandled() {
		next = d.Snapshot
	} else if next, err = defaultCommand(command, sess.snap); err != nil {
		return View{}, fmt.Errorf("docservice: command %q on %s: %w", command, id, err)
	}
	s.commitLocked(id, sess, next)
	return buildView(id, sess), nil
}

// Select replaces the selection of id.
func (s *Service) Select(ctx context.Context, id string, sel document.Selection) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.sessionLocked(ctx, id)
	if err != nil {
		return View{}, err
	}
	next, err := document.ForceSelection(sess.snap.Document(), sel)
	if err != nil {
		return View{}, fmt.Errorf("docservice: select %s: %w", id, err)
	}
	sess.snap = next
	return buildView(id, sess), nil
}

func (s *Service) commitLocked(id string, sess *session, next document.Snapshot) {
	if !document.Equal(next.Document(), sess.snap.Document()) {
		sess.dirty = true
	}
	sess.snap = next
	s.publish(EventUpdated, id, "")
}

// Save encodes id and writes it to the store. A non-empty ifMatch must equal
// the checksum of the currently stored bytes, otherwise ErrConflict is
// returned. The checksum of the written bytes is returned.
func (s *Service) Save(ctx context.Context, id, ifMatch string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.sessionLocked(ctx, id)
	if err != nil {
		return "", err
	}
	if ifMatch != "" {
		current := ""
		existing, err := s.store.Get(ctx, id)
		switch {
		case err == nil:
			current = checksum.Sum(existing)
		case !errors.Is(err, apperr.ErrNotFound):
			return "", fmt.Errorf("docservice: save %s: %w", id, err)
		}
		if ifMatch != current {
			return "", fmt.Errorf("docservice: save %s: %w", id, apperr.ErrConflict)
		}
	}

	data, err := codec.Marshal(sess.snap.Document(), s.format)
	if err != nil {
		return "", fmt.Errorf("docservice: encode %s: %w", id, err)
	}
	sum := checksum.Sum(data)
	// Record the checksum before writing so a file watcher seeing our own
	// write recognises it.
	prev := sess.stored
	sess.stored = sum
	if err := s.store.Set(ctx, id, data); err != nil {
		sess.stored = prev
		return "", fmt.Errorf("docservice: save %s: %w", id, err)
	}
	sess.dirty = false
	s.logger.Info("docservice: saved", slog.String("id", id), slog.String("checksum", sum))
	s.publish(EventSaved, id, sum)
	return sum, nil
}

// Delete removes id from the store and drops its session.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	delete(s.sessions, id)
	s.publish(EventDeleted, id, "")
	return nil
}

// Invalidate drops the cached session so the next access reloads from the
// store. Unsaved edits are discarded.
func (s *Service) Invalidate(id string) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		s.publish(EventReloaded, id, "")
	}
}

// ExternalChange reports that the stored bytes of id changed outside the
// service. Changes whose checksum matches the last save are ignored; other
// changes invalidate the session. It reports whether the session was
// dropped.
func (s *Service) ExternalChange(id, sum string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok || sess.stored == sum {
		s.mu.Unlock()
		return false
	}
	delete(s.sessions, id)
	s.mu.Unlock()

	s.logger.Info("docservice: reloaded after external change", slog.String("id", id))
	s.publish(EventReloaded, id, sum)
	return true
}

// List merges stored documents with open sessions that were never saved.
func (s *Service) List(ctx context.Context) ([]ListItem, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("docservice: list: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]ListItem, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		item := ListItem{ID: e.Key, Checksum: e.Checksum, UpdatedAt: e.UpdatedAt}
		if sess, ok := s.sessions[e.Key]; ok {
			item.Open, item.Dirty = true, sess.dirty
		}
		seen[e.Key] = struct{}{}
		items = append(items, item)
	}
	for id, sess := range s.sessions {
		if _, ok := seen[id]; !ok {
			items = append(items, ListItem{ID: id, Open: true, Dirty: sess.dirty})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// Record returns the raw record of id's current document.
func (s *Service) Record(ctx context.Context, id string) (codec.RawRecord, error) {
	snap, err := s.Open(ctx, id)
	if err != nil {
		return codec.RawRecord{}, err
	}
	return codec.ToRecord(snap.Document()), nil
}

// PlainText returns the text of id with blocks joined by newlines.
func (s *Service) PlainText(ctx context.Context, id string) (string, error) {
	snap, err := s.Open(ctx, id)
	if err != nil {
		return "", err
	}
	return snap.Document().PlainText(), nil
}

func buildView(id string, sess *session) View {
	sel := sess.snap.Selection()
	v := View{
		ID:     id,
		Record: codec.ToRecord(sess.snap.Document()),
		Selection: SelectionView{
			AnchorKey:    sel.AnchorKey,
			AnchorOffset: sel.AnchorOffset,
			FocusKey:     sel.FocusKey,
			FocusOffset:  sel.FocusOffset,
			IsBackward:   sel.IsBackward,
		},
		Checksum: sess.stored,
		Dirty:    sess.dirty,
	}
	if st, ok := sess.snap.InlineStyleOverride(); ok {
		v.PendingStyles = make([]string, len(st))
		for i, x := range st {
			v.PendingStyles[i] = string(x)
		}
	}
	return v
}
