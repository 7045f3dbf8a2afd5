// Package ux keeps per-workspace view preferences between sessions: the zoom
// and pan of the scale, the last selected timeline, which timelines have
// already shown their overflow advisory, and a few usage counters.
//
// Preferences live in .timeliner/preferences.json and are never required:
// a missing or unreadable file falls back to defaults.
package ux
