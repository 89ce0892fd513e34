// Package proxy represents the actions a module exposes to the host as
// proxies: commands, editor hooks, filers and tools.
//
// A proxy is created in one of three ways. Discovery builds it from a
// Class and its attribute. Registration binds it to a handler function.
// The cache path reads it from a record written by CacheRecord, and the
// class is resolved by name on first use.
//
// User settings (prefix, mask and hotkey) are stored under the proxy Key
// and overlay the defaults declared by the module.
package proxy
