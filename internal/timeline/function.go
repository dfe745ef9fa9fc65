package timeline

// Function is an affine map from a reference timeline to a subject
// timeline: subject = subjectTime + rate * (reference - referenceTime).
// Like Rate it is an immutable value type.
type Function struct {
	subjectTime   int64
	referenceTime int64
	rate          Rate
}

// NewFunction constructs a function through the point
// (referenceTime, subjectTime) with the given slope.
func NewFunction(subjectTime, referenceTime int64, rate Rate) Function {
	return Function{
		subjectTime:   subjectTime,
		referenceTime: referenceTime,
		rate:          rate,
	}
}

// SubjectTime returns the subject coordinate of the anchor point.
func (f Function) SubjectTime() int64 { return f.subjectTime }

// ReferenceTime returns the reference coordinate of the anchor point.
func (f Function) ReferenceTime() int64 { return f.referenceTime }

// Rate returns the slope of the map.
func (f Function) Rate() Rate { return f.rate }

// Apply maps a reference-timeline value to the subject timeline,
// rounding down. Returns ScaleOverflow / ScaleUnderflow when the result
// leaves int64 range; callers must check before composing further.
func (f Function) Apply(reference int64) int64 {
	return f.ApplyRounded(reference, RoundDown)
}

// ApplyRounded is Apply with an explicit rounding mode.
func (f Function) ApplyRounded(reference int64, mode RoundingMode) int64 {
	scaled := f.rate.Scale(reference-f.referenceTime, mode)
	if scaled == ScaleOverflow || scaled == ScaleUnderflow {
		return scaled
	}
	result := scaled + f.subjectTime
	// Detect wrap of the final addition.
	if (scaled > 0 && f.subjectTime > 0 && result < 0) ||
		(scaled < 0 && f.subjectTime < 0 && result >= 0) {
		if scaled > 0 {
			return ScaleOverflow
		}
		return ScaleUnderflow
	}
	return result
}

// Invertible reports whether the map can be inverted
// (zero-slope functions map everything to one subject value).
func (f Function) Invertible() bool { return f.rate.Invertible() }

// Inverse returns the subject→reference map. Panics if not invertible.
func (f Function) Inverse() Function {
	return Function{
		subjectTime:   f.referenceTime,
		referenceTime: f.subjectTime,
		rate:          f.rate.Inverse(),
	}
}

// ApplyInverse maps a subject-timeline value back to the reference
// timeline, rounding down. Panics if the function is not invertible.
func (f Function) ApplyInverse(subject int64) int64 {
	return f.Inverse().Apply(subject)
}

// Compose combines an a→b map with a b→c map into an a→c map.
// When exact is true, precision loss in the rate product is a
// programming error and panics; otherwise low-order rate precision may
// be silently dropped.
func Compose(bc, ab Function, exact bool) Function {
	return Function{
		subjectTime:   bc.Apply(ab.subjectTime),
		referenceTime: ab.referenceTime,
		rate:          Product(ab.rate, bc.rate, exact),
	}
}
