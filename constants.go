package mixer

// Common frame rates for convenience constructors.
const (
	// RateCD is the CD quality frame rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD frame rate.
	RateDAT = 48000

	// RateHiRes88 is the high-resolution 2x CD frame rate.
	RateHiRes88 = 88200

	// RateHiRes96 is the high-resolution 2x DAT frame rate.
	RateHiRes96 = 96000

	// RateHiRes176 is the very high resolution 4x CD frame rate.
	RateHiRes176 = 176400

	// RateHiRes192 is the very high resolution 4x DAT frame rate.
	RateHiRes192 = 192000

	// RateTelephony is the telephony (PSTN narrowband) frame rate.
	RateTelephony = 8000

	// RateVoIP is the VoIP wideband frame rate.
	RateVoIP = 16000
)

// StereoFloat returns the most common client format: interleaved
// float32 stereo at the given frame rate.
func StereoFloat(framesPerSecond int) Format {
	return Format{SampleFormat: Float32, Channels: 2, FramesPerSecond: framesPerSecond}
}

// MonoFloat returns interleaved float32 mono at the given frame rate.
func MonoFloat(framesPerSecond int) Format {
	return Format{SampleFormat: Float32, Channels: 1, FramesPerSecond: framesPerSecond}
}
