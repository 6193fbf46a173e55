// Package rewrite asks an LLM to drop filler words from kept speech tokens.
//
// The model may only keep or delete items. Its reply is a candidate word list
// that the transcript package aligns back onto the session.
package rewrite
