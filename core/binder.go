package core

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// Runtime identifies the execution environment the process starts in.
type Runtime string

const (
	// RuntimeNode is the unrestricted runtime; the directory adapter may
	// be attached.
	RuntimeNode = Runtime("node")

	// RuntimeEdge is the restricted runtime. It cannot execute the
	// persistence adapter at all, so only token/crypto operations run
	// there.
	RuntimeEdge = Runtime("edge")
)

// BindState is the resolved persistence capability of the process.
type BindState int

const (
	// Unbound means directory-dependent operations must fail fast with
	// ErrPersistenceUnavailable.
	Unbound BindState = iota

	// Bound means the directory adapter is attached and may be used.
	Bound
)

// DirectoryLoader attempts to construct the directory adapter. It is only
// invoked in the unrestricted runtime.
type DirectoryLoader func(ctx context.Context) (Directory, error)

// Binding is the process-wide, resolved-once persistence decision. It is
// resolved during construction, before the first authentication attempt,
// and is read-only afterwards: no hot-swap, no re-binding.
type Binding struct {
	runtime   Runtime
	state     BindState
	directory Directory
}

// ResolveBinding decides whether the directory adapter is wired in.
//
// In the edge runtime the binding is Unbound immediately; that is expected
// steady-state and logged at info only. In the node runtime the loader (or
// a pre-built adapter) is attached; a load failure degrades to Unbound
// rather than failing construction.
func ResolveBinding(ctx context.Context, runtime Runtime, directory Directory, loader DirectoryLoader, logger *slog.Logger) *Binding {
	if logger == nil {
		logger = slog.Default()
	}
	if runtime == "" {
		runtime = RuntimeNode
	}

	if runtime == RuntimeEdge {
		logger.Info("persistence unbound: edge runtime, token-only operation", "runtime", runtime)
		return &Binding{runtime: runtime, state: Unbound}
	}

	if loader != nil {
		dir, err := loader(ctx)
		if err != nil {
			logger.Warn("persistence unbound: directory adapter failed to load",
				"runtime", runtime, "error", err)
			return &Binding{runtime: runtime, state: Unbound}
		}
		directory = dir
	}

	if directory == nil {
		logger.Warn("persistence unbound: no directory adapter configured", "runtime", runtime)
		return &Binding{runtime: runtime, state: Unbound}
	}

	return &Binding{runtime: runtime, state: Bound, directory: directory}
}

// Runtime returns the runtime the binding was resolved for.
func (b *Binding) Runtime() Runtime { return b.runtime }

// State returns the resolved bind state.
func (b *Binding) State() BindState { return b.state }

// Bound reports whether directory I/O is permitted.
func (b *Binding) Bound() bool { return b.state == Bound }

// Directory returns the attached adapter, or ErrPersistenceUnavailable
// when the binding is unbound. Callers must not attempt the directory
// call themselves in that case.
func (b *Binding) Directory() (Directory, error) {
	if b.state != Bound {
		return nil, oops.Code("PERSISTENCE_UNBOUND").
			With("runtime", string(b.runtime)).
			Wrap(ErrPersistenceUnavailable)
	}
	return b.directory, nil
}
