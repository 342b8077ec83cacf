// Package brep builds boundary-representation solids into a step.Repository.
//
// Construction is strictly bottom-up:
//
//	points -> vertices -> edges -> faces -> shell -> solid
//
// Every builder takes the repository explicitly, appends the entities it
// needs in dependency order (a record is always added after everything it
// references) and returns a typed reference for the layer above. Nothing is
// ever modified after it is added.
//
// Builders are strict about well-formedness. A face whose edges do not form
// a closed loop fails with *NonClosedLoopError, a face whose loop winds
// against its plane normal fails with *FaceOrientationError, and a
// polyhedron whose edges are not each shared by exactly two faces fails with
// *OpenShellError. Errors are returned as the typed values below so callers
// can match them with errors.As.
package brep
