// Package http implements the HTTP handlers of the WIP reconciliation
// service. Handlers stay thin: they read multipart uploads, validate the
// form fields and hand the files to the workflow service, then render the
// result as JSON.
//
// # Endpoints
//
//	POST /api/wip/merge                 exports (repeated .txt files)
//	POST /api/wip/verify                unified, wbe, materials (.xlsx)
//	POST /api/wip/history               unified, wbe, current, older (.xlsx)
//	GET  /api/artifacts/{batch}         artifact names of a run
//	GET  /api/artifacts/{batch}/{name}  artifact download
//	GET  /api/me                        signed-in user
//	GET  /api/health, /api/health/ready, /api/health/live, /api/version
//
// Every workflow form accepts as_of (YYYY-MM-DD, defaults to today) and
// upload (true/false) to publish the artifacts to remote storage.
//
// # Error Handling
//
// Failures are rendered as RFC 7807 problem details by the shared
// ErrorHandler:
//
//	{
//	    "type": "/errors/input",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "missing WBE lookup",
//	    "instance": "/api/wip/verify"
//	}
package http
