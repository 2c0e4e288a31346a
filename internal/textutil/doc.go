// Package textutil sanitizes user-supplied names before they become file or
// directory names.
package textutil
