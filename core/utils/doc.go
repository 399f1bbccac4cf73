// Package utils provides common utility functions for the project-manager
// application. It includes the scalar conversions used to read untyped
// feature attributes and the declared-type coercion that drives attribute
// serialization when editing records.
package utils
