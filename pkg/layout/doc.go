// Package layout computes the metric geometry of a mat: which ticks exist
// and which tier each belongs to, where labels go, and where every fiducial
// sits. Nothing here touches pixels; the render package draws a Plan.
//
// # Tick classification
//
// Ticks are enumerated at the finest spacing of a zone, in whole
// centimeters from the origin line. Each tick takes the coarsest tier whose
// spacing divides its centimeter value. With the reference tiers that is
// 100 > 50 > 10 > 1, so 200 cm is a meter tick, 250 cm a half-meter tick and
// 173 cm a centimeter tick.
package layout
