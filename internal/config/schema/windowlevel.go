package schema

// WindowLevel maps a band of intensities onto the display range.
type WindowLevel struct {
	Name   string
	Window float64
	Level  float64
}

// Lower returns the intensity displayed as black.
func (w WindowLevel) Lower() float64 {
	return w.Level - w.Window/2
}

// Upper returns the intensity displayed as white.
func (w WindowLevel) Upper() float64 {
	return w.Level + w.Window/2
}

var windowLevelPresets = []WindowLevel{
	{Name: "Abdomen", Window: 400, Level: 40},
	{Name: "Lung", Window: 1500, Level: -700},
	{Name: "Liver", Window: 100, Level: 110},
	{Name: "Bone", Window: 1500, Level: 500},
	{Name: "Brain", Window: 85, Level: 42},
	{Name: "Stroke", Window: 36, Level: 28},
	{Name: "Vascular", Window: 800, Level: 200},
	{Name: "Subdural", Window: 160, Level: 60},
	{Name: "Normalized", Window: 0, Level: 1},
}

// WindowLevelPresets returns the standard CT window/level presets.
func WindowLevelPresets() []WindowLevel {
	out := make([]WindowLevel, len(windowLevelPresets))
	copy(out, windowLevelPresets)
	return out
}

// LookupWindowLevel returns the preset with the given name.
func LookupWindowLevel(name string) (WindowLevel, bool) {
	for _, w := range windowLevelPresets {
		if w.Name == name {
			return w, true
		}
	}
	return WindowLevel{}, false
}

func windowLevelNames() []string {
	names := make([]string, len(windowLevelPresets))
	for i, w := range windowLevelPresets {
		names[i] = w.Name
	}
	return names
}
