// Package generator is the boundary to the AI generation service.
//
// A Generator turns a Request into a JSON result. Gemini calls the Google
// generative language API through google.golang.org/genai and reports API
// failures as *StatusError, which carries the HTTP status used to decide
// whether a failure is retried. Func adapts a plain function for tests and
// alternative backends.
package generator
