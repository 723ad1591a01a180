package testerr

// FailingDep tracks calls to a dependency and decides which of them fail.
type FailingDep struct {
	CallIndex         int
	Err               error
	FailAllAfterIndex bool
	FailAtIndex       int
}

// NewFailingDeps creates failure cases for a dependency that is called
// expectCalls times. For every call index two cases are created:
// - Only that call fails.
// - That call and every call after it fail.
func NewFailingDeps(err error, expectCalls int) []FailingDep {
	deps := make([]FailingDep, 0, expectCalls*2)
	for i := 0; i < expectCalls; i++ {
		deps = append(deps, FailingDep{
			CallIndex:         -1,
			Err:               err,
			FailAllAfterIndex: true,
			FailAtIndex:       i,
		}, FailingDep{
			CallIndex:         -1,
			Err:               err,
			FailAllAfterIndex: false,
			FailAtIndex:       i,
		})
	}

	return deps
}

func (d *FailingDep) next() bool {
	d.CallIndex++

	if d.FailAtIndex == d.CallIndex {
		return true
	}

	return d.FailAllAfterIndex && d.CallIndex > d.FailAtIndex
}

// MaybeFailErrFunc returns dep.Err instead of calling f when the current call should fail.
func MaybeFailErrFunc(dep *FailingDep, f func() error) error {
	if dep.next() {
		return dep.Err
	}

	return f()
}

// MaybeFail returns dep.Err instead of calling f when the current call should fail.
func MaybeFail[T any](dep *FailingDep, f func() (T, error)) (T, error) {
	if dep.next() {
		var zero T
		return zero, dep.Err
	}

	return f()
}
