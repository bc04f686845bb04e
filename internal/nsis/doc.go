// Package nsis renders the NSIS script fragments included by the installer
// script: the variable definitions, the install file list and the matching
// uninstall list.
//
// Templates are embedded in the binary and rendering is deterministic, so an
// unchanged configuration and tree always produce byte-identical fragments.
package nsis
