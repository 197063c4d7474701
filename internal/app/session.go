package app

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sudomakeinstall/cardio/internal/config"
	"github.com/sudomakeinstall/cardio/internal/config/layer"
	"github.com/sudomakeinstall/cardio/internal/config/loader"
	"github.com/sudomakeinstall/cardio/internal/config/notify"
	"github.com/sudomakeinstall/cardio/internal/config/raw"
	"github.com/sudomakeinstall/cardio/internal/config/schema"
	"github.com/sudomakeinstall/cardio/internal/transfer"
)

// transferSection is the subtree whose changes require a recompile.
const transferSection = "transfer_function"

// Edit is an interactive change to the configuration. Its fragment is
// merged into the session layer, above every other source.
type Edit struct {
	ID       uuid.UUID
	Fragment raw.Value
}

// NewEdit creates an edit with a fresh ID.
func NewEdit(fragment raw.Value) Edit {
	return Edit{ID: uuid.New(), Fragment: fragment}
}

// Snapshot is one published state of the session. Snapshots are never
// modified after they are published.
type Snapshot struct {
	// Revision identifies the snapshot.
	Revision uuid.UUID

	// Config is the resolved configuration.
	Config *schema.Config

	// Transfer is the transfer function compiled from Config.
	Transfer *transfer.Function

	// Stack holds the layers Config was resolved from.
	Stack layer.Stack
}

// Session turns edits and file reloads into snapshots.
//
// Apply and Reload are serialized; each resolves and compiles a complete
// new snapshot and swaps it in atomically, so Current never observes a
// half-updated configuration. A failed edit leaves the current snapshot
// in place.
//
// Changes are published while the session is locked; observers may call
// Current but must not call Apply or Reload.
type Session struct {
	mu       sync.Mutex // Serializes Apply and Reload
	resolver *config.Resolver
	base     layer.Stack // Every layer below the session layer
	edits    raw.Value

	current atomic.Pointer[Snapshot]

	notifier    *notify.Notifier
	ownNotifier bool
	logger      *zap.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotifier publishes session changes on n instead of a notifier
// owned by the session.
func WithNotifier(n *notify.Notifier) SessionOption {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

// NewSession resolves layers and compiles the first snapshot.
// A session layer among layers seeds the accumulated edits.
func NewSession(resolver *config.Resolver, layers []layer.Layer, opts ...SessionOption) (*Session, error) {
	s := &Session{
		resolver: resolver,
		edits:    raw.EmptyMap(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("session")
	if s.notifier == nil {
		s.notifier = notify.New()
		s.ownNotifier = true
	}

	for _, l := range layers {
		if l.Source == layer.SourceSession {
			s.edits = raw.Merge(s.edits, l.Data)
		}
	}
	s.base = layer.NewStack(layers...).Without(layer.SourceSession)

	snap, _, err := s.build(s.base, s.edits, nil)
	if err != nil {
		if s.ownNotifier {
			s.notifier.Close()
		}
		return nil, err
	}
	s.current.Store(snap)

	s.logger.Debug("session started",
		zap.Stringer("revision", snap.Revision),
		zap.Int("layers", snap.Stack.Len()),
	)
	return s, nil
}

// Current returns the most recently published snapshot.
func (s *Session) Current() *Snapshot {
	return s.current.Load()
}

// Notifier returns the notifier the session publishes changes on.
func (s *Session) Notifier() *notify.Notifier {
	return s.notifier
}

// Apply merges edit into the session layer and publishes the result.
// If the configuration does not change, the current snapshot is
// returned and nothing is published. On failure the returned error is
// an *EditError and the current snapshot stays active.
func (s *Session) Apply(edit Edit) (*Snapshot, error) {
	if edit.Fragment.Kind() != raw.KindMap {
		return nil, &EditError{Op: "apply", Edit: edit.ID, Err: ErrEmptyEdit}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current.Load()
	edits := raw.Merge(s.edits, edit.Fragment)

	snap, paths, err := s.build(s.base, edits, prev)
	if err != nil {
		s.logger.Warn("edit rejected", zap.Stringer("edit", edit.ID), zap.Error(err))
		s.notifier.Notify(notify.Change{
			Type:     notify.ChangeRejected,
			Paths:    edit.Fragment.Paths(),
			Revision: prev.Revision,
			Edit:     edit.ID,
			Source:   layer.StandardLayerName(layer.SourceSession),
			Err:      err,
		})
		return nil, &EditError{Op: "apply", Edit: edit.ID, Err: err}
	}

	s.edits = edits
	if len(paths) == 0 {
		return prev, nil
	}

	s.publish(snap, notify.Change{
		Type:   notify.ChangeApplied,
		Paths:  paths,
		Edit:   edit.ID,
		Source: layer.StandardLayerName(layer.SourceSession),
	})
	return snap, nil
}

// Reload replaces the declarative file layer and publishes the result.
// Interactive edits stay on top of the new file contents.
func (s *Session) Reload(file layer.Layer) (*Snapshot, error) {
	if file.Source != layer.SourceFile {
		return nil, &EditError{Op: "reload", Err: ErrNotFileLayer}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.base.Replace(file)

	prev := s.current.Load()
	snap, paths, err := s.build(base, s.edits, prev)
	if err != nil {
		s.rejectReload(file.Path, prev, err)
		return nil, &EditError{Op: "reload", Err: err}
	}

	s.base = base
	if len(paths) == 0 {
		return prev, nil
	}

	s.publish(snap, notify.Change{
		Type:   notify.ChangeReload,
		Paths:  paths,
		Source: layer.StandardLayerName(layer.SourceFile),
	})
	return snap, nil
}

// ReloadFile reads the declarative file at path and reloads it.
// A file that cannot be read or parsed is rejected like an invalid one.
func (s *Session) ReloadFile(fsys loader.FileSystem, path string) (*Snapshot, error) {
	data, err := loader.Load(fsys, path)
	if err != nil {
		s.mu.Lock()
		s.rejectReload(path, s.current.Load(), err)
		s.mu.Unlock()
		return nil, &EditError{Op: "reload", Err: err}
	}
	return s.Reload(layer.File(path, data))
}

// Run applies edits from the channel until it is closed or ctx is done.
// Rejected edits are logged and published; they do not stop the loop.
func (s *Session) Run(ctx context.Context, edits <-chan Edit) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case edit, ok := <-edits:
			if !ok {
				return nil
			}
			_, _ = s.Apply(edit)
		}
	}
}

// Close releases the session's notifier if the session created it.
func (s *Session) Close() {
	if s.ownNotifier {
		s.notifier.Close()
	}
}

// build resolves base plus edits and compiles the transfer function.
// The transfer function of prev is reused when nothing under the
// transfer_function section changed.
func (s *Session) build(base layer.Stack, edits raw.Value, prev *Snapshot) (*Snapshot, []string, error) {
	layers := base.Layers()
	if session := layer.Session(edits); !session.IsEmpty() {
		layers = append(layers, session)
	}

	stack, err := s.resolver.Stack(layers...)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := schema.Validate(stack.Merge())
	if err != nil {
		return nil, nil, err
	}

	var paths []string
	if prev != nil {
		paths = raw.Diff(prev.Config.Tree(), cfg.Tree())
	}

	var fn *transfer.Function
	if prev != nil && !touches(paths, transferSection) {
		fn = prev.Transfer
	} else {
		fn, err = transfer.Compile(cfg.TransferFunction)
		if err != nil {
			return nil, nil, err
		}
		s.logger.Debug("transfer function compiled",
			zap.Int("stops", len(cfg.TransferFunction.Stops)),
			zap.String("blend_mode", string(cfg.TransferFunction.BlendMode)),
		)
	}

	return &Snapshot{
		Revision: uuid.New(),
		Config:   cfg,
		Transfer: fn,
		Stack:    stack,
	}, paths, nil
}

// publish swaps snap in and notifies subscribers. Must hold s.mu.
func (s *Session) publish(snap *Snapshot, change notify.Change) {
	s.current.Store(snap)
	change.Revision = snap.Revision

	s.logger.Info("configuration updated",
		zap.Stringer("revision", snap.Revision),
		zap.String("source", change.Source),
		zap.Strings("paths", change.Paths),
	)
	s.notifier.Notify(change)
}

// rejectReload reports a failed reload. Must hold s.mu.
func (s *Session) rejectReload(path string, prev *Snapshot, err error) {
	s.logger.Warn("reload rejected", zap.String("path", path), zap.Error(err))
	s.notifier.Notify(notify.Change{
		Type:     notify.ChangeRejected,
		Revision: prev.Revision,
		Source:   layer.StandardLayerName(layer.SourceFile),
		Err:      err,
	})
}

// touches reports whether any path lies in or above section.
func touches(paths []string, section string) bool {
	for _, p := range paths {
		if p == section || strings.HasPrefix(p, section+".") {
			return true
		}
	}
	return false
}
