// Package ui provides the graphical user interface for KDE Theme Backup.
// This file contains icon generation utilities for the system tray.
package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/yllada/kde-theme-backup/common"
)

// IconConfig defines the configuration for icon generation.
type IconConfig struct {
	Size        int
	FrameColor  color.RGBA
	BandColors  []color.RGBA
	BadgeColor  color.RGBA
	ShowBadge   bool
	CornerRound int
}

// DefaultIdleIconConfig returns the config for the idle state: a frame with
// three color bands, like a theme swatch.
func DefaultIdleIconConfig() IconConfig {
	return IconConfig{
		Size:       common.TrayIconSize,
		FrameColor: color.RGBA{61, 174, 233, 255}, // Breeze blue
		BandColors: []color.RGBA{
			{35, 38, 41, 255},    // Dark
			{239, 240, 241, 255}, // Light
			{61, 174, 233, 255},  // Accent
		},
		CornerRound: 3,
	}
}

// DefaultBusyIconConfig returns the config shown while a command runs.
func DefaultBusyIconConfig() IconConfig {
	cfg := DefaultIdleIconConfig()
	cfg.FrameColor = color.RGBA{246, 116, 0, 255} // Orange
	cfg.BadgeColor = color.RGBA{246, 116, 0, 255}
	cfg.ShowBadge = true
	return cfg
}

// IconGenerator generates PNG icons for the system tray.
type IconGenerator struct {
	config IconConfig
}

// NewIconGenerator creates a new icon generator with the given config.
func NewIconGenerator(config IconConfig) *IconGenerator {
	return &IconGenerator{config: config}
}

// Generate creates a PNG icon and returns the bytes.
func (g *IconGenerator) Generate() []byte {
	size := g.config.Size
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	g.drawSwatch(img)
	if g.config.ShowBadge {
		g.drawBadge(img)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		common.LogWarn("Failed to encode tray icon: %v", err)
	}
	return buf.Bytes()
}

// inRoundedRect reports whether (x, y) lies inside the square [lo, hi)
// with corners of radius r cut off.
func inRoundedRect(x, y, lo, hi, r int) bool {
	if x < lo || y < lo || x >= hi || y >= hi {
		return false
	}
	cx, cy := x, y
	switch {
	case x < lo+r:
		cx = lo + r
	case x >= hi-r:
		cx = hi - r - 1
	}
	switch {
	case y < lo+r:
		cy = lo + r
	case y >= hi-r:
		cy = hi - r - 1
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}

// drawSwatch draws the framed vertical color bands.
func (g *IconGenerator) drawSwatch(img *image.RGBA) {
	size := g.config.Size
	lo, hi := 1, size-1
	inner := hi - lo - 4
	bands := len(g.config.BandColors)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if !inRoundedRect(x, y, lo, hi, g.config.CornerRound) {
				continue
			}
			if !inRoundedRect(x, y, lo+2, hi-2, g.config.CornerRound-1) || bands == 0 {
				img.Set(x, y, g.config.FrameColor)
				continue
			}
			band := (x - lo - 2) * bands / inner
			if band >= bands {
				band = bands - 1
			}
			img.Set(x, y, g.config.BandColors[band])
		}
	}
}

// drawBadge draws a filled dot in the lower right corner.
func (g *IconGenerator) drawBadge(img *image.RGBA) {
	size := g.config.Size
	r := size / 5
	cx, cy := size-r-1, size-r-1
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.Set(x, y, g.config.BadgeColor)
			}
		}
	}
}

// GenerateIdleIcon generates the idle state icon.
func GenerateIdleIcon() []byte {
	return NewIconGenerator(DefaultIdleIconConfig()).Generate()
}

// GenerateBusyIcon generates the busy state icon.
func GenerateBusyIcon() []byte {
	return NewIconGenerator(DefaultBusyIconConfig()).Generate()
}
