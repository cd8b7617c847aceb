// Package services implements the business logic layer of chainviz. It sits
// between the HTTP handlers and the option chain pipeline so that handlers
// only deal with transport concerns.
//
// # Available Services
//
//	- AnalysisService: validates an upload, normalizes it into a canonical
//	  table, derives the LTP, OI and IV views and renders their charts
//	- HealthService: liveness, readiness and version reporting
//
// # Request Flow
//
//	upload := services.Upload{Filename: header.Filename, Reader: file}
//	analysis, err := svc.Analyze(ctx, upload)
//	if err != nil {
//	    errHandler.HandleError(w, r, err)
//	    return
//	}
//	images, err := svc.Charts(ctx, analysis)
//
// Services are stateless across requests. Every Analysis lives for exactly
// one request and is discarded afterwards.
//
// # Error Handling
//
// Errors keep the sentinels of the optionchain and chart packages in their
// chain, so errors.Kind and errors.StatusCode in internal/errors can map
// them to problem responses.
package services
