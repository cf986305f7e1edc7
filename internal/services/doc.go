// Package services defines the shared error taxonomy for pipeline stages.
//
// Stages tag failures with sentinel markers (ErrScan, ErrConnectivity,
// ErrExtraction, ErrApplyConflict, ErrApplyFailure) through Wrap so the
// workflow and CLI can classify them with errors.Is. Per-item errors never
// abort a run; run-level errors do (see IsRunFatal).
package services
