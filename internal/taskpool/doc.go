// Package taskpool manages the fixed-size pool of isolated workers that the
// editor offloads expensive media operations onto (decoding, waveform
// extraction, export transcoding). It multiplexes many logical task
// submissions over a small set of reusable workers without ever blocking the
// caller: Submit returns a Future immediately and the eventual result or
// error is delivered through it exactly once, even across worker crashes and
// pool shutdown.
package taskpool
