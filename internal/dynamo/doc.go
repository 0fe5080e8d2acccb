// Package dynamo provides the rigid-body world the playground simulates.
//
// The package defines the core types of the simulation:
//
//   - [World]: arena of bodies and constraints stepped at a fixed rate
//   - [Body]: a rigid body with a collision [Shape]
//   - [Handle]: stable index of a body inside a world
//   - [PointToPoint]: ball joint linking two body-local pivots
//   - [Metric]: observer folded over the world after each frame
//
// # Example
//
//	w := dynamo.NewWorld(dynamo.DefaultConfig())
//	h := w.AddBody(dynamo.NewBody(1, physics.NewSphere(0.5)))
//	w.Step(1.0/60, elapsed, 3)
//	pos := w.Body(h).Position
//
// # Thread Safety
//
// A World is NOT thread-safe. All calls are expected from the frame loop.
package dynamo
