// Package catalog reads the structure catalog that labels the classifier's
// output classes.
//
// Row i of the catalog describes class i. Each entry carries its label (the
// reference structure file name), the labels of structurally equivalent
// entries, and optional composition and space-group metadata. List-valued
// columns accept both the legacy bracketed literal form ['a', 'b'] and a plain
// semicolon-separated form.
package catalog
