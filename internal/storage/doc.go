// Package storage provides the flash volume abstraction the device persists
// to, and the auxiliary "prefs" namespace that lives beside the config
// document.
//
// Two Volume implementations exist. DirVolume maps the volume onto a host
// directory: Mount creates the directory and probes it for writability,
// Format removes it, and WriteFile replaces files with a temp-file rename so
// a reader never observes a half-written document. MemVolume keeps files in
// memory and exposes failure switches (FailMount, FailFormat, ShortWrites)
// for exercising the degraded-storage paths.
//
// Prefs is a small YAML document holding boot bookkeeping (boot count, last
// address and network). It is one of the namespaces cleared by a factory
// reset.
package storage
