package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sudomakeinstall/cardio/internal/config/layer"
	"github.com/sudomakeinstall/cardio/internal/config/preset"
	"github.com/sudomakeinstall/cardio/internal/config/raw"
	"github.com/sudomakeinstall/cardio/internal/config/schema"
)

// PresetPath is the configuration path that selects a preset.
const PresetPath = "transfer_function.preset"

// Resolver merges configuration layers, applies the selected preset and
// validates the result. A Resolver holds no mutable state and is safe for
// concurrent use.
type Resolver struct {
	presets *preset.Registry
	logger  *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a resolver that looks presets up in presets.
// A nil registry behaves like an empty one.
func NewResolver(presets *preset.Registry, opts ...Option) *Resolver {
	r := &Resolver{
		presets: presets,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("resolver")
	return r
}

// Resolve merges layers in priority order and validates the result.
//
// When no builtin layer is given, the schema defaults are used. If the
// merged layers name a preset, the preset's stops and lighting are added
// as a layer at the preset priority before validation.
func (r *Resolver) Resolve(layers ...layer.Layer) (*schema.Config, error) {
	stack, err := r.Stack(layers...)
	if err != nil {
		return nil, err
	}

	cfg, err := schema.Validate(stack.Merge())
	if err != nil {
		r.logger.Debug("configuration rejected", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}

// Stack returns the complete layer stack Resolve would merge, including
// the builtin layer and the derived preset layer.
func (r *Resolver) Stack(layers ...layer.Layer) (layer.Stack, error) {
	for _, l := range layers {
		if l.Source == layer.SourcePreset {
			return layer.Stack{}, fmt.Errorf("%w: %s", ErrPresetLayer, l.Name)
		}
	}

	stack := layer.NewStack(layers...)
	if _, ok := stack.BySource(layer.SourceBuiltin); !ok {
		stack = stack.With(layer.Builtin(schema.ConfigDefaults()))
	}

	name, ok := presetName(stack.Merge())
	if !ok {
		return stack, nil
	}

	p, err := r.lookup(name)
	if err != nil {
		return layer.Stack{}, err
	}

	r.logger.Debug("applying preset",
		zap.String("preset", name),
		zap.String("selected_by", stack.Which(PresetPath)),
		zap.Int("stops", len(p.Stops)),
	)
	return stack.With(layer.Preset(name, p.Fragment())), nil
}

func (r *Resolver) lookup(name string) (preset.Preset, error) {
	if r.presets == nil {
		return preset.Preset{}, &preset.UnknownPresetError{Name: name}
	}
	return r.presets.Lookup(name)
}

// presetName returns the preset referenced by tree. Values that are not
// non-empty strings are left for validation to report.
func presetName(tree raw.Value) (string, bool) {
	v, ok := tree.Lookup(PresetPath)
	if !ok {
		return "", false
	}
	name, ok := v.AsString()
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
