// Package config resolves the configuration of the cardio viewer.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  5. Session Edits           │  ← Highest priority (interactive changes)
//	├─────────────────────────────┤
//	│  4. Command Line Arguments  │  ← --preset, --lighting.ambient, --set
//	├─────────────────────────────┤
//	│  3. Declarative File        │  ← --config cardio.toml
//	├─────────────────────────────┤
//	│  2. Preset                  │  ← transfer_function.preset
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Mappings merge key by key, scalars replace, and sequences replace as a
// whole: a layer that sets transfer_function.stops discards every stop
// supplied below it.
//
// The preset layer is never supplied by the caller. The Resolver reads
// transfer_function.preset from the other layers, looks the name up in the
// preset registry and inserts the preset's stops and lighting at the
// preset tier, so file and command-line values for the same fields still
// win.
//
// # Sub-packages
//
//   - raw: Tagged configuration values, deep merge and diff
//   - layer: Layers, priorities and the merge stack
//   - loader: TOML and YAML files, command-line flags
//   - schema: Field descriptors, validation and the typed Config
//   - preset: Bundled transfer-function presets
//   - registry: Flat index of settings for listing and search
//   - watcher: File watching for live reload
//   - notify: Change notification and observer pattern
//
// # Basic Usage
//
//	presets, err := preset.Builtin()
//	if err != nil {
//	    return err
//	}
//	r := config.NewResolver(presets)
//	cfg, err := r.Resolve(layer.File(path, fileTree), layer.Args(argTree))
//	if err != nil {
//	    return err // *schema.ValidationError, *preset.UnknownPresetError
//	}
//	fmt.Println(cfg.TransferFunction.Lighting.Ambient)
//
// Resolution is a pure function of its layers: resolving the same layers
// twice yields identical configurations.
package config
