// Package ui holds the primitive types shared by every layer of the scene
// engine: display items, colors, fonts, screen directions and the narrow
// collaborator contract through which the engine talks to the display.
package ui
