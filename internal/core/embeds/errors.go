package embeds

import "errors"

var (
	// ErrNoImages is returned when Images is called with an empty list
	ErrNoImages = errors.New("no images provided")

	// ErrImageOverBudget is returned when an image is still larger than the
	// per-image budget after one reduction pass
	ErrImageOverBudget = errors.New("image exceeds size budget after reduction")

	// ErrVideoUnavailable is returned when no video processor or prober is configured
	ErrVideoUnavailable = errors.New("video embeds are not available")

	// ErrInvalidVideo is returned when a VideoInput does not set exactly one of Path or Data
	ErrInvalidVideo = errors.New("invalid video input")

	// ErrVideoTooLarge is returned when a video exceeds the upload limit
	ErrVideoTooLarge = errors.New("video exceeds size limit")
)
