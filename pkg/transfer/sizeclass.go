package transfer

// Size class boundaries in bytes. Boundary values belong to the larger class.
const (
	MediumThreshold int64 = 10 << 20  // 10 MiB
	LargeThreshold  int64 = 100 << 20 // 100 MiB
)

// SizeClass partitions transfers by declared byte size.
type SizeClass int

const (
	SizeSmall SizeClass = iota
	SizeMedium
	SizeLarge
)

// String returns the lowercase class name for logging and stats keys.
func (c SizeClass) String() string {
	switch c {
	case SizeSmall:
		return "small"
	case SizeMedium:
		return "medium"
	case SizeLarge:
		return "large"
	default:
		return "unknown"
	}
}

// Classify maps a transfer size in bytes onto its SizeClass. Non-positive
// sizes classify as Small; callers that want unknown sizes treated
// conservatively (uploads with no Content-Length) handle that before calling.
func Classify(size int64) SizeClass {
	switch {
	case size >= LargeThreshold:
		return SizeLarge
	case size >= MediumThreshold:
		return SizeMedium
	default:
		return SizeSmall
	}
}
