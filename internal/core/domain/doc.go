// Package domain defines the core domain models for NoteGuard.
//
// Domain models are plain value types shared by the client layers
// without any IO dependencies. This package contains:
//
//   - User, Registration, ProfileUpdate: account records
//   - AnalyzeRequest, AnalyzeResponse, AnalysisResult: analysis payloads
//   - Analysis, AnalysisPage, ListOptions: analysis history
//   - Errors: coded domain errors and the error kind taxonomy
//   - Validation of user input performed before any request is sent
package domain
