// Package application provides application initialization and dependency wiring.
// It resolves the carrier rate table (configuration or Redis), then builds the
// storage, classifier, calculator, handlers, router and HTTP server, keeping
// the main package focused on CLI parsing and orchestration.
package application
