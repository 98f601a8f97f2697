package ports

// FileHasher computes a content hash for a single file, used by the Task
// Planner to fold patch content digests into a BuildTask's id (§4.4 step 4)
// and by the patch adapter to check that a patch file is readable before
// applying it.
//
//go:generate go run go.uber.org/mock/mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type FileHasher interface {
	// ComputeFileHash returns the xxhash of path's content.
	ComputeFileHash(path string) (uint64, error)
}
