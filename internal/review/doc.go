// Package review gates pending changes behind a human (or automated)
// decision before they reach the state store.
package review
