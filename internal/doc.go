// Package internal contains the implementation packages of the prime CLI.
//
// # Package Organization
//
//   - config: Defaults, file and environment loading, and validation
//   - logging: Structured, component-scoped logging over log/slog
//   - errors: Typed errors carrying a code, build step and path
//   - inventory: Loading the vehicle records behind the inventory page
//   - server: The inventory page, static files, health and live reload
//   - build: The asset pipeline as a tree of named tasks and its runner
//   - watcher: Debounced file system notifications
//   - scaffolding: Starter sites for prime init
//   - version: Build metadata
//
// # Inter-Package Communication
//
//   - cmd resolves a config.Config and hands each part to server or build
//   - The server renders inventory records through the site's view on every request
//   - The watcher feeds change batches to the server's live reload and to
//     build.WatchLoop, which reruns the affected tasks
//   - Steps return errors.PrimeError values; the runner tags them with the step name
package internal
