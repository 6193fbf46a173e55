// Command trimscript edits spoken-word video by editing its transcript.
//
// A typical session transcribes a recording, removes words with delete or
// optimize, checks the result with ranges or preview, and writes the cut
// with render. Every edit is saved immediately and can be undone.
package main
