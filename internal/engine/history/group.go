package history

import "errors"

// Transaction records every step pushed by fn as one entry named name.
//
// If fn fails, nothing is recorded and revert receives the partial entry
// so the caller can take back the steps fn already applied; its Undo
// deltas are in the order to apply them. fn's error is returned, joined
// with revert's if that fails too. An open group is closed before fn runs.
func (h *History) Transaction(name string, fn func() error, revert func(*Entry) error) error {
	h.EndGroup()
	h.BeginGroup(name)

	if err := fn(); err != nil {
		partial := h.group
		h.CancelGroup()
		if partial == nil || len(partial.Steps) == 0 {
			return err
		}
		if rerr := revert(partial); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}

	h.EndGroup()
	return nil
}
