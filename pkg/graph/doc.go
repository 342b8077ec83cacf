// Package graph defines the design graph produced by evaluating a stepforge
// script. The graph is an immutable DAG of cuboid primitives, placements
// and assemblies; Flatten reduces it to the list of world-space boxes that
// become solids in an exchange file.
package graph
