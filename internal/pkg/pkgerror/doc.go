// Package pkgerror defines the structured error returned by HTTP handlers.
//
// An Error carries the message shown to the client, a Type and a Code. The
// router turns the Code into the HTTP status and writes {"error": message}.
package pkgerror
