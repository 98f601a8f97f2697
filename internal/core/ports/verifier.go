package ports

// Verifier checks for the presence of store paths on disk, used by the
// Scheduler's rebuild decision (§4.6: "rebuild if installPath does not
// exist...").
//
//go:generate go run go.uber.org/mock/mockgen -destination=mocks/verifier_mock.go -package=mocks -source=verifier.go
type Verifier interface {
	// Exists reports whether path is present on disk.
	Exists(path string) (bool, error)
}
