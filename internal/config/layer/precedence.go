package layer

// Standard priority levels for configuration layers.
// Higher values override lower values during merging.
const (
	// PriorityBuiltin is the lowest priority for built-in defaults.
	PriorityBuiltin = 0

	// PriorityPreset is for the transfer-function preset named by any source.
	PriorityPreset = 100

	// PriorityFile is for the declarative configuration file.
	PriorityFile = 200

	// PriorityArgs is for command-line argument overrides.
	PriorityArgs = 300

	// PrioritySession is the highest priority for interactive edits.
	PrioritySession = 1000
)

// DefaultPriority returns the default priority for a given source.
func DefaultPriority(source Source) int {
	switch source {
	case SourceBuiltin:
		return PriorityBuiltin
	case SourcePreset:
		return PriorityPreset
	case SourceFile:
		return PriorityFile
	case SourceArgs:
		return PriorityArgs
	case SourceSession:
		return PrioritySession
	default:
		return PriorityBuiltin
	}
}

// StandardLayerNames defines standard names for configuration layers.
var StandardLayerNames = map[Source]string{
	SourceBuiltin: "defaults",
	SourcePreset:  "preset",
	SourceFile:    "file",
	SourceArgs:    "arguments",
	SourceSession: "session",
}

// StandardLayerName returns the standard name for a source.
func StandardLayerName(source Source) string {
	if name, ok := StandardLayerNames[source]; ok {
		return name
	}
	return "unknown"
}
