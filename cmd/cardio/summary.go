package main

import (
	"io"

	"github.com/sudomakeinstall/cardio/internal/app"
)

// printSummary writes a short report of a resolved snapshot.
func printSummary(w io.Writer, snap *app.Snapshot) {
	cfg := snap.Config
	tf := cfg.TransferFunction

	name := tf.Preset
	if name == "" {
		name = "(none)"
	}
	wl := cfg.Viewer.WindowLevel

	printf(w, "revision:      %s\n", snap.Revision)
	printf(w, "title:         %s\n", cfg.Viewer.Title)
	printf(w, "window/level:  %s (%g/%g, displays %g to %g)\n", wl.Name, wl.Window, wl.Level, wl.Lower(), wl.Upper())
	printf(w, "preset:        %s\n", name)
	printf(w, "blend mode:    %s\n", tf.BlendMode)
	printf(w, "scalar range:  [%g, %g]\n", tf.ScalarRange.Min, tf.ScalarRange.Max)
	printf(w, "stops:         %d (+%d layers)\n", len(tf.Stops), len(tf.Layers))
	printf(w, "lighting:      ambient=%g diffuse=%g specular=%g specular_power=%g (shade=%t)\n",
		tf.Lighting.Ambient, tf.Lighting.Diffuse, tf.Lighting.Specular, tf.Lighting.SpecularPower, tf.Shade)
	printf(w, "sources:       %d volumes, %d meshes, %d segmentations\n",
		len(cfg.Volumes), len(cfg.Meshes), len(cfg.Segmentations))
}
