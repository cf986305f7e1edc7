// Package pairing maps derived artifacts to the originals they were
// produced from and filters redundant work out of a pending change set.
package pairing
