// Package core obtains a login token from the operating system's integrated
// account store instead of a browser or app-switch flow. It validates caller
// requests, optionally forces a credential renewal first, asks the store for
// access and delivers exactly one outcome per request on a serial main queue.
//
// The force-blocking-renew flag is the only state that survives a request; it
// lives in a PreferenceStore so it persists across restarts.
package core
