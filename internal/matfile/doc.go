// Package matfile reads the narrow slice of the MAT-file (Level 5) format
// that physiological acquisition exports use: named numeric matrices, char
// matrices, and scalars, optionally zlib-compressed.
//
// It is deliberately not a general MAT parser. Cell arrays, structs, sparse
// and complex matrices are rejected with a parse error naming the variable.
package matfile
