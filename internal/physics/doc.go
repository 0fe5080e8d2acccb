// Package physics provides collision shapes and the playground's static scenery.
//
// Each shape implements [dynamo.Shape]:
//
//   - [Sphere]: radius around the body origin
//   - [Box]: axis-aligned in body space, given by half extents
//   - [ConvexPolyhedron]: vertices plus faces, used for the [Pyramid] block
//   - [Plane]: infinite half-space below local +Z, also a [dynamo.HalfSpace]
//
// [AddContainer] builds the floor, ceiling and walls that keep blocks in view.
package physics
