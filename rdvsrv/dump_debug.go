//go:build debug

package rdvsrv

const debugDumpEnabled = true
