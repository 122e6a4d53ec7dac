// Package logx is a thin structured-logging layer over zerolog.
//
// It exposes a small Logger value type plus a Service that owns the
// configured sinks (console, optional file) and can swap them at
// runtime via Apply without invalidating loggers already handed out.
package logx
