// Package apply commits approved changes to the state store atomically,
// with a verified backup and rollback on write failure.
package apply
