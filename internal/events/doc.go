// Package events defines progress notifications emitted by background media
// tasks and the fan-out mechanism that delivers them to interested UI
// observers (progress bars, status panels). Progress is informational only:
// dropping or failing to deliver an event never affects task execution.
package events
