// Package lifecycle derives borrowing state from transaction records.
//
// Every function is deterministic: the current time is always passed in and
// nothing here performs I/O. Callers load records through the ports, run the
// engine, and persist whatever it mutated.
package lifecycle
