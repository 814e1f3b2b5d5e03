// Package errors provides coded, actionable error messages for toastd's
// configuration, CLI and server layers.
//
// Each error has a unique code (e.g., "T101") that maps to:
//   - A category (config, cli, server)
//   - A short message describing the error
//   - A detailed explanation
//
// # Usage
//
//	err := errors.New("T102").
//	    WithDetail("durations.error must be a Go duration such as \"6s\"").
//	    WithSuggestion("Use \"6s\" or \"6000ms\"")
//
//	fmt.Print(err.Format())
//	// Output:
//	// ERROR T102: Invalid duration
//	//
//	//   durations.error must be a Go duration such as "6s"
//	//
//	//   Hint: Use "6s" or "6000ms"
//
// The toast lifecycle itself never fails at runtime; its construction
// errors are plain sentinels in package toast.
package errors
