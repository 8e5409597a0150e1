package port

type FileRemover interface {
	// RemoveFiles deletes the given local paths. Failures are logged, never returned, and missing files are ignored.
	RemoveFiles(paths ...string)
}

type ArtifactTracker interface {
	// Track records a live artifact path owned by an in-flight request.
	Track(path string)
	// Release removes the artifact at path and forgets it. Releasing an unknown path is a no-op.
	Release(path string)
}
