// Package errors provides coded, actionable errors for the toolbox CLI and
// server.
//
// Each code maps to a category, a short message, a longer explanation and a
// documentation link:
//
//	err := errors.New("T120").
//	    WithResource("app", "js/app.js").
//	    WithChain("app", "jquery", "app")
//
//	fmt.Print(err.Format())
//	// ERROR T120: Dependency cycle
//	//
//	//   resource  app (js/app.js)
//	//   chain     app → jquery → app
//	//   ...
//
// Configuration errors carry a file location instead, and Format prints
// the surrounding lines of the file.
//
// Codes are grouped by range:
//   - T100-T109: configuration
//   - T110-T129: resources and rendering
//   - T130-T139: storage
//   - T140-T149: CLI and server
package errors
