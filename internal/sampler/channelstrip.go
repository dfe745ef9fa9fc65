package sampler

// channelStrip is the sinc sampler's per-channel history buffer: one
// fixed-length float32 vector per channel, uniform length across
// channels. The strip always holds the most recent frames pushed
// through it, so the filter's negative reach survives across Mix calls
// and packet boundaries.
type channelStrip struct {
	data   [][]float32
	length int
}

func newChannelStrip(channels, length int) *channelStrip {
	data := make([][]float32, channels)
	for i := range data {
		data[i] = make([]float32, length)
	}
	return &channelStrip{data: data, length: length}
}

// channels returns the channel count.
func (cs *channelStrip) channels() int { return len(cs.data) }

// len returns the per-channel length in frames.
func (cs *channelStrip) len() int { return cs.length }

// at returns the sample for one channel at a strip index.
func (cs *channelStrip) at(channel, index int) float32 {
	return cs.data[channel][index]
}

// channel returns one channel's backing vector.
func (cs *channelStrip) channel(ch int) []float32 {
	return cs.data[ch]
}

// shiftBy shifts every channel left by n frames, discarding the oldest
// n and zero-filling the vacated tail. A shift of length or more
// clears the strip entirely.
func (cs *channelStrip) shiftBy(n int) {
	if n <= 0 {
		return
	}
	if n > cs.length {
		n = cs.length
	}
	for _, ch := range cs.data {
		copy(ch, ch[n:])
		tail := ch[cs.length-n:]
		for i := range tail {
			tail[i] = 0
		}
	}
}

// clear zero-fills every channel.
func (cs *channelStrip) clear() {
	for _, ch := range cs.data {
		for i := range ch {
			ch[i] = 0
		}
	}
}
