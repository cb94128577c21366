// Package control implements closed-loop car controllers.
//
// Every controller satisfies [Controller]; the simulation loop calls
// Update once per car per tick. The shared data model is [State]: error
// trackers for heading, lateral offset and distance to the current
// target node, the last issued commands, and the per-car aim tolerance.
//
//   - [Loop] with [PIDLaw]: PID-style steering plus the [SpeedPolicy] table
//   - [Reactive]: heading-only geometric steering with a deadband
//   - [User]: human input from an [InputSource]
//
// Alternative strategies (fuzzy inference, scripts) plug into [Loop] by
// implementing [Law]; a Law may fall back to [PIDLaw] per function.
//
// # Usage
//
//	c := car.NewKinematic(car.DefaultParams(), start, 0, 1)
//	ctrl := control.NewPID(c, rand.New(rand.NewSource(seed)), control.DefaultGains(), control.DefaultScale)
//	ctrl.SetTrack(tr)
//	err := ctrl.Update(false) // once per tick
package control
