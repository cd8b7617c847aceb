// Package http implements the HTTP handlers of the chainviz web service.
// Handlers stay thin: they read the multipart upload, call the analysis
// service and format the response. All option chain logic lives in the
// services and optionchain packages.
//
// # Routes
//
//	GET  /                          upload page
//	POST /                          upload page with the rendered charts
//	POST /api/analyze               views and statistics as JSON
//	POST /api/analyze/charts/{view} one chart as PNG (ltp, oi, iv)
//	GET  /api/health[/ready|/live]  health reports
//	GET  /api/version               build information
//
// Every upload uses the multipart field "file" and is limited to the
// configured maximum size.
//
// # Error Handling
//
// JSON endpoints answer with RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/schema",
//	    "title": "Unrecognized Option Chain Layout",
//	    "status": 422,
//	    "detail": "too few columns to map option chain schema (found 15 data columns, want 21)",
//	    "instance": "/api/analyze",
//	    "error_code": "SCHEMA_ERROR"
//	}
//
// The upload page shows the same failures inline, with the matching status
// code.
//
// # Testing
//
// Handlers are tested with httptest and a testify mock of the analysis
// service; the page tests run the real pipeline end to end.
package http
