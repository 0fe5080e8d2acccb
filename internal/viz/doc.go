// Package viz draws the playground in a terminal.
//
// Rendering goes through a braille [Canvas] (2x4 dots per cell):
//
//   - [Wireframe] and [Render3D]: edges projected through the scene camera
//   - [DrawPlayground]: container, floor grid, trail, focused block, drag anchor
//   - [Panel]: lipgloss stats panel with an asciigraph energy strip
//
// Colors come from a [Theme]; [NewStyles] derives the lipgloss styles.
package viz
