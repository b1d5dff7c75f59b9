// Package problems collects validation problems for a serialized pipeline
// document: circular links, missing or invalid properties, and nodes whose
// component is not registered.
//
// Problems are values. They carry the byte range of the offending JSON token
// so editors can underline it, and a document with problems stays usable.
// Text that does not parse as a pipeline document produces no problems;
// callers detect load failures separately.
package problems
