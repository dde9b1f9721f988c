// Package services implements the reconciliation workflows behind both the
// HTTP API and the command line tools.
//
// A WorkflowService runs one of three workflows to completion per call:
//
//	MergeExports      text exports -> unified WIP workbook
//	VerifyReferences  unified workbook + lookups -> missing-keys report
//	UpdateHistory     unified workbook + WBE lookup + histories -> new history
//
// Every call works on its own in-memory copy of the inputs. Results carry
// the produced artifacts and the non-fatal diagnostics; blocking problems
// are returned as errors built from the sentinels in errors.go.
//
// HealthService reports liveness and readiness of the process.
package services
