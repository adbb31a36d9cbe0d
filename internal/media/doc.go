// Package media implements the background task handlers the editor offloads
// to the task pool: probing clip containers, extracting waveform peaks for
// the timeline, and the export transcode pass. Handlers operate on
// in-process payload values and report progress through the pool's progress
// callback; they hold no state across tasks.
package media
