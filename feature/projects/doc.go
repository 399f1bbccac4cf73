// Package projects exposes the project dashboard: listing, selecting,
// editing and creating project records stored in the remote feature service.
//
// All persistent state lives in the service; this package is form logic on
// top of the client's contract. Selection and edit-mode flags travel as an
// explicit SessionState value in requests and responses instead of living in
// server-side session storage.
package projects
