package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Rating is the user's self-assessed recall quality for a reviewed card.
type Rating int

const (
	Again Rating = 1
	Hard  Rating = 2
	Good  Rating = 3
	Easy  Rating = 4
)

// Correct reports whether the rating counts towards session accuracy.
func (r Rating) Correct() bool {
	return r == Good || r == Easy
}

func (r Rating) String() string {
	switch r {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	}
	return fmt.Sprintf("rating(%d)", int(r))
}

// ParseRating converts the wire representation back into a Rating. Anything
// outside the four known labels is rejected at the boundary.
func ParseRating(s string) (Rating, error) {
	switch s {
	case "again":
		return Again, nil
	case "hard":
		return Hard, nil
	case "good":
		return Good, nil
	case "easy":
		return Easy, nil
	}
	return 0, fmt.Errorf("unknown rating %q", s)
}

// MarshalJSON serializes the rating as its lowercase label.
func (r Rating) MarshalJSON() ([]byte, error) {
	switch r {
	case Again, Hard, Good, Easy:
		return json.Marshal(r.String())
	}
	return nil, fmt.Errorf("cannot marshal invalid rating %d", int(r))
}

// UnmarshalJSON parses the lowercase label, rejecting unknown values so a
// tampered snapshot fails to load instead of carrying garbage forward.
func (r *Rating) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRating(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ReviewEntry is one element of a session record: a single rating event.
type ReviewEntry struct {
	CardID    string
	Rating    Rating
	Timestamp time.Time
}
