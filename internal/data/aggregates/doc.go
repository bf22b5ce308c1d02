// Package aggregates implements the catalog write boundaries on gorm.
//
// The publication aggregate applies editor patches to lessons and programs in one transaction
// and runs the publish validators against the merged state. The scheduling aggregate claims due
// lessons with a single skip-locked UPDATE and cascades each touched program in its own
// transaction, without validation.
package aggregates
