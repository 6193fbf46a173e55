// Package project persists editing projects in SQLite.
//
// A project is one source video with its recognized transcript, the current
// kept indices, and the undo stack. Sessions are saved after every edit so
// each CLI invocation resumes where the last one stopped. Writers take a
// per-project file lock.
package project
