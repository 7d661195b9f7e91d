package valueobject

import "fmt"

// ActiveHours is the window of the day, in whole hours on the transaction's
// own clock, during which a user normally transacts. Both bounds are
// inclusive. The zero value means no window is known.
type ActiveHours struct {
	start int
	end   int
	set   bool
}

// NewActiveHours creates an ActiveHours window. Both hours must be in 0..23
// and start must not be after end.
func NewActiveHours(start, end int) (ActiveHours, error) {
	if start < 0 || start > 23 {
		return ActiveHours{}, fmt.Errorf("active hours start must be between 0 and 23, got %d", start)
	}
	if end < 0 || end > 23 {
		return ActiveHours{}, fmt.Errorf("active hours end must be between 0 and 23, got %d", end)
	}
	if start > end {
		return ActiveHours{}, fmt.Errorf("active hours start %d is after end %d", start, end)
	}
	return ActiveHours{start: start, end: end, set: true}, nil
}

// MustActiveHours is NewActiveHours for constants. It panics on invalid input.
func MustActiveHours(start, end int) ActiveHours {
	h, err := NewActiveHours(start, end)
	if err != nil {
		panic(err)
	}
	return h
}

// Start returns the first active hour.
func (h ActiveHours) Start() int { return h.start }

// End returns the last active hour.
func (h ActiveHours) End() int { return h.end }

// IsZero returns true if no window has been set.
func (h ActiveHours) IsZero() bool { return !h.set }

// OutsideHours reports whether hour falls strictly before start or strictly
// after end. An unset window never reports off-hours.
func (h ActiveHours) OutsideHours(hour int) bool {
	if !h.set {
		return false
	}
	return hour < h.start || hour > h.end
}

// String renders "08-23".
func (h ActiveHours) String() string {
	if !h.set {
		return ""
	}
	return fmt.Sprintf("%02d-%02d", h.start, h.end)
}
