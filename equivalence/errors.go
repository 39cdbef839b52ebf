package equivalence

import "fmt"

// ErrInconsistentClass is returned by the Add family when a new class would
// join items that already belong to different classes.
type ErrInconsistentClass struct {
	Item     any
	Conflict any
}

func (e *ErrInconsistentClass) Error() string {
	return fmt.Sprintf("equivalence: %v and %v already belong to different classes", e.Item, e.Conflict)
}
