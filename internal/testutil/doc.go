// Package testutil contains helper builders and test doubles used across
// tests to reduce boilerplate when constructing conversation contexts and
// scripting backend replies. They are not intended for production usage.
package testutil
